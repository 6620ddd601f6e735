package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/sky-quest/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переводит события и статистику шины в метрики Prometheus.
// Счетчики событий обновляются подпиской, статистика шины - периодическим опросом.
type MetricsExporter struct {
	bus      EventBus
	sub      Subscription
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	events    *prometheus.CounterVec
	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge

	wins      prometheus.Gauge
	collected prometheus.Gauge
	surface   prometheus.Gauge
	pickups   prometheus.Gauge
	hazards   prometheus.Gauge
	worldSeed prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skyquest",
			Name:      "events_total",
			Help:      "Игровые события по типам.",
		}, []string{"type"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений в очереди.",
		}),
		wins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Name:      "wins",
			Help:      "Количество побед в текущей сессии.",
		}),
		collected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Name:      "collected",
			Help:      "Шаров собрано в текущем раунде.",
		}),
		surface: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Subsystem: "world",
			Name:      "surface_voxels",
			Help:      "Кубов поверхности в текущем мире.",
		}),
		pickups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Subsystem: "world",
			Name:      "pickups",
			Help:      "Шаров в текущем мире.",
		}),
		hazards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Subsystem: "world",
			Name:      "hazards",
			Help:      "Врагов в текущем мире.",
		}),
		worldSeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skyquest",
			Subsystem: "world",
			Name:      "seed",
			Help:      "Зерно шума текущего мира.",
		}),
	}

	reg.MustRegister(me.events, me.published, me.consumed, me.dropped, me.inflight,
		me.wins, me.collected, me.surface, me.pickups, me.hazards, me.worldSeed)
	return me
}

// Start подписывается на события и запускает опрос статистики шины.
func (m *MetricsExporter) Start(ctx context.Context, interval time.Duration) error {
	sub, err := m.bus.Subscribe(ctx, Filter{}, m.handle)
	if err != nil {
		return err
	}
	m.sub = sub
	go m.loop(interval)
	logging.Info("📈 Метрики EventBus активированы")
	return nil
}

// Stop останавливает опрос и отписывается от шины.
func (m *MetricsExporter) Stop() {
	m.stopOnce.Do(func() {
		if m.sub != nil {
			m.sub.Unsubscribe()
		}
		close(m.quit)
		<-m.done
	})
}

func (m *MetricsExporter) handle(_ context.Context, ev *Envelope) {
	// Счетчик увеличивается последним: по нему видно, что gauge уже обновлены
	defer m.events.WithLabelValues(ev.EventType).Inc()

	switch ev.EventType {
	case TypeWorldRegenerated:
		var p WorldRegenerated
		if err := ev.Decode(&p); err != nil {
			logging.Warn("⚠️ EventBus metrics: %v", err)
			return
		}
		m.surface.Set(float64(p.Surface))
		m.pickups.Set(float64(p.Pickups))
		m.hazards.Set(float64(p.Hazards))
		m.worldSeed.Set(float64(p.Seed))
	case TypeRoundWon:
		var p RoundWon
		if err := ev.Decode(&p); err != nil {
			logging.Warn("⚠️ EventBus metrics: %v", err)
			return
		}
		m.wins.Set(float64(p.Wins))
	case TypePickupCollected:
		var p PickupCollected
		if err := ev.Decode(&p); err != nil {
			logging.Warn("⚠️ EventBus metrics: %v", err)
			return
		}
		m.collected.Set(float64(p.Collected))
	}
}

func (m *MetricsExporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(m.done)

	// Для Counter храним прошлое значение и прибавляем дельту.
	var prev Stats

	for {
		select {
		case <-ticker.C:
			prev = m.collect(prev)
		case <-m.quit:
			m.collect(prev)
			return
		}
	}
}

func (m *MetricsExporter) collect(prev Stats) Stats {
	stats := m.bus.Metrics()

	if d := stats.Published - prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))
	return stats
}
