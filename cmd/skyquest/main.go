package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/sky-quest/internal/api"
	"github.com/annel0/sky-quest/internal/audio"
	"github.com/annel0/sky-quest/internal/config"
	"github.com/annel0/sky-quest/internal/eventbus"
	"github.com/annel0/sky-quest/internal/game"
	"github.com/annel0/sky-quest/internal/hud"
	"github.com/annel0/sky-quest/internal/logging"
	"github.com/annel0/sky-quest/internal/observability"
	"github.com/annel0/sky-quest/internal/physics"
	"github.com/annel0/sky-quest/internal/world"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	frameRate       = 60
	hudLogInterval  = 5 * time.Second
	diagInterval    = time.Second
	metricsInterval = 2 * time.Second
	busCapacity     = 1024
	maxCatchUp      = 4
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или SKYQUEST_CONFIG)")
	frames := flag.Int("frames", 0, "остановиться после N кадров (0 - бесконечно)")
	autostart := flag.Bool("autostart", false, "сразу начинать новую игру из меню")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	if cfg.Logging.File {
		if err := logging.InitDefaultLogger("skyquest"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
	}
	defer logging.CloseDefaultLogger()
	level, _ := logging.ParseLevel(cfg.Logging.ConsoleLevel)
	logging.SetConsoleLevel(level)
	logging.GetLoggerManager().Configure(level, logging.TRACE)

	logging.Info("🎮 Запуск Sky Quest...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	if cfg.Debug.OtelEnabled {
		shutdown, err := observability.InitTelemetry(ctx, "skyquest", cfg.Debug.OtelEndpoint)
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Error("❌ Ошибка остановки OpenTelemetry: %v", err)
				}
			}()
		}
	}

	// === ШИНА СОБЫТИЙ И МЕТРИКИ ===
	bus := eventbus.NewMemoryBus(busCapacity)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		logging.Error("❌ Ошибка подписки LoggingListener: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.Debug.MetricsEnabled {
		exporter := eventbus.NewMetricsExporter(bus, reg)
		if err := exporter.Start(ctx, metricsInterval); err != nil {
			logging.Error("❌ Ошибка запуска экспортёра метрик: %v", err)
		} else {
			defer exporter.Stop()
		}
	}

	// === АУДИО ===
	player := newAudio(cfg.Audio)
	defer closeAudio(player)

	// === ИГРА ===
	quality, _ := cfg.World.GetQuality()
	pipeline := world.NewPipeline(
		world.NewGenerator(world.WithSeed(cfg.World.Seed)),
		world.NewPlacer(nil, cfg.World.Pickups),
	).WithSize(cfg.World.Width, cfg.World.Depth)

	g := game.New(game.Options{
		Entities:    entity.NewManager(),
		Physics:     physics.NewWorld(),
		Pipeline:    pipeline,
		Quality:     quality,
		Audio:       player,
		Volume:      cfg.Audio.Volume,
		Bus:         bus,
		MoveSpeed:   cfg.Player.Speed,
		Sensitivity: cfg.Player.Sensitivity,
		Fov:         cfg.Player.Fov,
	})
	diag := hud.NewDiagnostics(hud.NewSystemSampler(), diagInterval)

	// === DEBUG API ===
	var apiLogger *logging.Logger
	if cfg.Logging.File {
		apiLogger = logging.GetAPILogger()
	}
	server, err := api.NewDebugServer(api.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Debug.GetAPIPort()),
		Source:      g,
		Diagnostics: diag,
		Registerer:  reg,
		Gatherer:    reg,
		Logger:      apiLogger,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания Debug API: %v", err)
	}
	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ Ошибка Debug API: %v", err)
		}
	}()

	logging.Info("✅ Мир %s %dx%d, pickups=%d, seed=%d", quality, cfg.World.Width, cfg.World.Depth, cfg.World.Pickups, cfg.World.Seed)
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Debug.GetAPIPort())

	run(ctx, g, diag, *frames, *autostart)

	// === GRACEFUL SHUTDOWN ===
	logging.Debug("Остановка сервисов...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки Debug API: %v", err)
	}
	if err := logging.GetLoggerManager().CloseAll(); err != nil {
		logging.Error("❌ Ошибка закрытия логов: %v", err)
	}

	logging.Info("👋 Sky Quest остановлен")
}

// run крутит кадры фиксированной длины до отмены ctx или исчерпания лимита кадров.
// Медленные кадры догоняются не более чем maxCatchUp шагами за тик.
func run(ctx context.Context, g *game.Game, diag *hud.Diagnostics, limit int, autostart bool) {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	clock := newFixedClock(time.Second/frameRate, maxCatchUp)
	last := time.Now()
	lastHUD := last
	n := 0
	for limit == 0 || n < limit {
		select {
		case <-ctx.Done():
			logging.Info("📡 Получен сигнал завершения")
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			frames, dropped := clock.Advance(elapsed)
			if dropped > 0 {
				logging.Debug("⏱️ Кадры не успевают, пропущено %s", dropped)
			}
			for i := 0; i < frames && (limit == 0 || n < limit); i++ {
				if autostart && g.State() == game.StateMenu {
					g.StartNewGame()
				}
				g.Frame(clock.Seconds(), game.Input{})
				n++
			}
			diag.RecordFrame(elapsed.Seconds(), now)

			if now.Sub(lastHUD) >= hudLogInterval {
				lastHUD = now
				text := hud.Build(g.Snapshot(), diag).Text()
				logging.Info("📊 [%s] %s", g.State(), strings.ReplaceAll(text, "\n", " | "))
			}
		}
	}
	logging.Info("⏹️ Достигнут лимит кадров: %d", limit)
}

func newAudio(cfg config.AudioConfig) audio.Player {
	if !cfg.Enabled {
		return audio.NopPlayer{}
	}

	player := audio.NewBeepPlayer()
	if err := player.Init(); err != nil {
		logging.Warn("⚠️ Аудио недоступно, звук отключен: %v", err)
		return audio.NopPlayer{}
	}
	if err := player.StartMusic(audio.VolumeScalar(cfg.Volume)); err != nil {
		logging.Warn("⚠️ Не удалось запустить музыку: %v", err)
	}
	return player
}

func closeAudio(p audio.Player) {
	if bp, ok := p.(*audio.BeepPlayer); ok {
		bp.Close()
	}
}
