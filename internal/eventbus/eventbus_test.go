package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEnvelope(t *testing.T, eventType string, payload interface{}) *Envelope {
	t.Helper()
	ev, err := NewEnvelope(eventType, SourceGame, payload)
	require.NoError(t, err)
	return ev
}

func TestNewEnvelope_RoundTrip(t *testing.T) {
	ev := mustEnvelope(t, TypePickupCollected, PickupCollected{EntityID: 7, Collected: 3})

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, SourceGame, ev.Source)
	assert.Equal(t, 1, ev.Version)
	assert.False(t, ev.Timestamp.IsZero())

	var p PickupCollected
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, PickupCollected{EntityID: 7, Collected: 3}, p)

	other := mustEnvelope(t, TypeRoundWon, RoundWon{Wins: 1})
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestNewEnvelope_BadPayload(t *testing.T) {
	_, err := NewEnvelope("Broken", SourceGame, make(chan int))
	assert.Error(t, err)
}

func TestMemoryBus_FilterAndDelivery(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var all, wins atomic.Int32
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { all.Add(1) })
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{TypeRoundWon}}, func(context.Context, *Envelope) { wins.Add(1) })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypeRoundWon, RoundWon{Wins: 1})))
	require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypeHazardHit, HazardHit{EntityID: 2})))

	assert.Eventually(t, func() bool { return all.Load() == 2 && wins.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return bus.Metrics().Consumed == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	var n atomic.Int32
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { n.Add(1) })
	require.NoError(t, err)
	sub.Unsubscribe()
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypeRoundWon, RoundWon{})))
	bus.Close()
	assert.Equal(t, int32(0), n.Load())
}

func TestMemoryBus_CloseDrainsAndRejects(t *testing.T) {
	bus := NewMemoryBus(8)

	var mu sync.Mutex
	var seen []string
	_, err := bus.Subscribe(context.Background(), Filter{}, func(_ context.Context, ev *Envelope) {
		mu.Lock()
		seen = append(seen, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypePickupCollected, PickupCollected{Collected: i + 1})))
	}
	bus.Close()
	bus.Close()

	mu.Lock()
	assert.Len(t, seen, 3, "Close дожидается доставки принятых событий")
	mu.Unlock()

	assert.ErrorIs(t, bus.Publish(context.Background(), mustEnvelope(t, TypeRoundWon, RoundWon{})), ErrClosed)
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()

	block := make(chan struct{})
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { <-block })
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypeHazardPushed, HazardPushed{})))
	}
	close(block)

	s := bus.Metrics()
	assert.Equal(t, uint64(20), s.Published+s.Dropped)
}

func TestMetricsExporter_CountsEventsAndWorldGauges(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)
	require.NoError(t, me.Start(context.Background(), 10*time.Millisecond))
	defer me.Stop()

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, mustEnvelope(t, TypeWorldRegenerated, WorldRegenerated{
		Reason: "new_game", Seed: 42, Surface: 1200, Pickups: 5, Hazards: 9,
	})))
	require.NoError(t, bus.Publish(ctx, mustEnvelope(t, TypePickupCollected, PickupCollected{EntityID: 3, Collected: 1})))
	require.NoError(t, bus.Publish(ctx, mustEnvelope(t, TypeRoundWon, RoundWon{Wins: 2})))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(me.events.WithLabelValues(TypeRoundWon)) == 1 &&
			testutil.ToFloat64(me.events.WithLabelValues(TypePickupCollected)) == 1 &&
			testutil.ToFloat64(me.events.WithLabelValues(TypeWorldRegenerated)) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(me.wins))
	assert.Equal(t, 1.0, testutil.ToFloat64(me.collected))
	assert.Equal(t, 1200.0, testutil.ToFloat64(me.surface))
	assert.Equal(t, 9.0, testutil.ToFloat64(me.hazards))
	assert.Equal(t, 42.0, testutil.ToFloat64(me.worldSeed))

	assert.Eventually(t, func() bool { return testutil.ToFloat64(me.published) == 3 }, time.Second, 5*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "skyquest_events_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = testutil.GatherAndCount(reg, "skyquest_collected")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStartLoggingListener(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	sub, err := StartLoggingListener(context.Background(), bus)
	require.NoError(t, err)
	require.NotNil(t, sub)

	require.NoError(t, bus.Publish(context.Background(), mustEnvelope(t, TypeHazardHit, HazardHit{EntityID: 1})))
	assert.Eventually(t, func() bool { return bus.Metrics().Consumed == 1 }, time.Second, 5*time.Millisecond)
}
