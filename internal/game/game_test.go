package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/annel0/sky-quest/internal/audio"
	"github.com/annel0/sky-quest/internal/eventbus"
	"github.com/annel0/sky-quest/internal/physics"
	"github.com/annel0/sky-quest/internal/util"
	"github.com/annel0/sky-quest/internal/world"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameDT float32 = 1.0 / 60

// slabNoise дает сплошной слой в двух нижних ячейках поля высотой 8
type slabNoise struct{}

func (slabNoise) Noise3D(x, y, z float64) float64 { return -y }

type fixture struct {
	game     *Game
	physics  *physics.World
	entities *entity.Manager
	rec      *audio.Recorder
}

func newFixture(t *testing.T, bus eventbus.EventBus) *fixture {
	t.Helper()
	gen := world.NewGenerator(
		world.WithRand(rand.New(rand.NewSource(7))),
		world.WithNoiseFactory(func(int64) util.Noise3D { return slabNoise{} }),
	)
	pipeline := world.NewPipeline(gen, world.NewPlacer(rand.New(rand.NewSource(7)), world.DefaultPickupCount)).WithSize(4, 4)

	f := &fixture{
		physics:  physics.NewWorld(),
		entities: entity.NewManager(),
		rec:      &audio.Recorder{},
	}
	f.game = New(Options{
		Entities: f.entities,
		Physics:  f.physics,
		Pipeline: pipeline,
		Quality:  world.QualityLow,
		Audio:    f.rec,
		Volume:   5,
		Bus:      bus,
	})
	return f
}

// startRound проводит игру через заставку и меню в состояние InGame
func (f *fixture) startRound(t *testing.T) {
	t.Helper()
	f.game.Frame(SplashDuration, Input{})
	require.Equal(t, StateMenu, f.game.State())
	require.True(t, f.game.StartNewGame())
	f.game.Frame(frameDT, Input{})
	require.Equal(t, StateInGame, f.game.State())
}

func (f *fixture) avatarPosition(t *testing.T) mgl32.Vec3 {
	t.Helper()
	id, ok := f.game.Avatar()
	require.True(t, ok)
	pos, _, ok := f.physics.Transform(id)
	require.True(t, ok)
	return pos
}

func TestGame_SplashCountdown(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, StateSplash, f.game.State())

	f.game.Frame(1, Input{})
	assert.Equal(t, StateSplash, f.game.State())
	assert.False(t, f.game.StartNewGame(), "команды меню недоступны на заставке")

	f.game.Frame(1, Input{})
	assert.Equal(t, StateMenu, f.game.State())
}

func TestGame_NewGameBuildsWorldThenEntersRound(t *testing.T) {
	f := newFixture(t, nil)
	f.game.Frame(SplashDuration, Input{})
	require.True(t, f.game.StartNewGame())

	assert.Equal(t, StateNewGame, f.game.State())
	layout := f.game.Layout()
	require.NotNil(t, layout)
	assert.Len(t, layout.Columns, 16)
	assert.Len(t, layout.Batch.Pickups, 5)
	assert.Len(t, layout.Batch.HazardCandidates, 11)
	assert.Len(t, f.entities.Tagged(entity.LifecycleReboot), len(layout.Descriptors()))
	_, ok := f.game.Avatar()
	assert.False(t, ok, "игрок появляется только при входе в раунд")

	f.game.Frame(frameDT, Input{})
	assert.Equal(t, StateInGame, f.game.State())

	id, ok := f.game.Avatar()
	require.True(t, ok)
	assert.Equal(t, entity.CategoryAvatar, f.entities.CategoryOf(id))
	assert.NotContains(t, f.entities.Tagged(entity.LifecycleReboot), id)
	assert.Equal(t, SpawnPosition, f.avatarPosition(t))
}

func TestGame_ResetIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	f.game.Frame(frameDT, Input{Escape: true})
	require.Equal(t, StateMenu, f.game.State())

	var before entity.ID
	for _, id := range f.entities.Tagged(entity.LifecycleReboot) {
		before = max(before, id)
	}

	require.True(t, f.game.StartNewGame())
	f.game.Frame(frameDT, Input{})

	alive := f.entities.Tagged(entity.LifecycleReboot)
	assert.Len(t, alive, len(f.game.Layout().Descriptors()))
	for _, id := range alive {
		assert.Greater(t, id, before, "пережила сброс сущность старого мира")
	}
	assert.Equal(t, SessionState{}, f.game.Session())
}

func TestGame_NewGameTwiceBeforeFrameBoundary(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	old := f.entities.Tagged(entity.LifecycleReboot)
	require.NotEmpty(t, old)

	f.game.EnterNewGame()
	f.game.EnterNewGame()
	f.game.Frame(frameDT, Input{})

	assert.Len(t, f.entities.Tagged(entity.LifecycleReboot), len(f.game.Layout().Descriptors()),
		"живет ровно один мир")
	for _, id := range old {
		_, ok := f.entities.Get(id)
		assert.False(t, ok, "сущность %d старого мира пережила сброс", id)
	}
	_, ok := f.entities.Get(f.game.roundTimer)
	assert.True(t, ok, "таймер раунда указывает на живую сущность")
}

func TestGame_NewGameKeepsWins(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	f.game.session.Wins = 3
	f.game.session.Collected = 2

	f.game.Frame(frameDT, Input{Escape: true})
	require.True(t, f.game.StartNewGame())

	assert.Equal(t, SessionState{Wins: 3}, f.game.Session())
}

func TestGame_FifthPickupTriggersSoftReset(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	f.game.Frame(frameDT, Input{})

	f.game.session.Collected = 4
	old := f.game.Layout()
	pickup := f.entities.Spawn(world.PickupDescriptor(f.avatarPosition(t)))

	f.game.Frame(frameDT, Input{})

	assert.Equal(t, SessionState{Wins: 1}, f.game.Session())
	assert.Equal(t, 1, f.rec.Count(audio.CueScore))
	_, ok := f.entities.Get(pickup)
	assert.False(t, ok)
	assert.NotSame(t, old, f.game.Layout(), "мир построен заново")
	assert.Equal(t, SpawnPosition, f.avatarPosition(t), "игрок возвращен на старт")
	assert.Equal(t, StateInGame, f.game.State())
	assert.Len(t, f.entities.Tagged(entity.LifecycleReboot), len(f.game.Layout().Descriptors()))
}

func TestGame_WinFrameStartsFreshRoundTimer(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	f.game.Frame(0.5, Input{})
	require.GreaterOrEqual(t, f.game.RoundElapsed(), float32(0.5))

	f.game.session.Collected = 4
	f.entities.Spawn(world.PickupDescriptor(f.avatarPosition(t)))
	f.game.Frame(0.25, Input{})

	require.Equal(t, 1, f.game.Session().Wins)
	assert.Zero(t, f.game.RoundElapsed(), "новый раунд начинается с нуля")

	f.game.Frame(0.25, Input{})
	assert.InDelta(t, 0.25, f.game.RoundElapsed(), 1e-5)
}

func TestGame_HazardContactResetsRoundWithoutWin(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	f.game.session.Wins = 2
	f.game.session.Collected = 3

	d := world.HazardDescriptor(f.avatarPosition(t).Add(mgl32.Vec3{1.5, 0, 0}))
	f.entities.Spawn(d)

	f.game.Frame(frameDT, Input{})

	assert.Equal(t, SessionState{Wins: 2}, f.game.Session())
	assert.Equal(t, 1, f.rec.Count(audio.CueDeath))
	assert.Equal(t, SpawnPosition, f.avatarPosition(t))
}

func TestGame_EscapeOpensMenuAndResume(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	first, _ := f.game.Avatar()
	reboot := len(f.entities.Tagged(entity.LifecycleReboot))

	f.game.Frame(frameDT, Input{Escape: true})

	assert.Equal(t, StateMenu, f.game.State())
	assert.True(t, f.game.Paused())
	_, ok := f.entities.Get(first)
	assert.False(t, ok, "игрок удаляется при выходе из раунда")
	assert.Len(t, f.entities.Tagged(entity.LifecycleReboot), reboot, "мир сохраняется в меню")

	f.game.Frame(frameDT, Input{})
	assert.Equal(t, StateMenu, f.game.State(), "автоматического продолжения нет")

	require.True(t, f.game.Resume())
	assert.Equal(t, StateInGame, f.game.State())
	assert.False(t, f.game.Paused())
	second, ok := f.game.Avatar()
	require.True(t, ok)
	assert.NotEqual(t, first, second)
}

func TestGame_PauseGame(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.game.PauseGame())
	f.startRound(t)

	require.True(t, f.game.PauseGame())
	assert.Equal(t, StatePaused, f.game.State())
	assert.True(t, f.game.Paused())

	f.game.Frame(frameDT, Input{})
	require.True(t, f.game.Resume())
	assert.Equal(t, StateInGame, f.game.State())
}

func TestGame_RoundTimerAdvancesAndResets(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	for i := 0; i < 4; i++ {
		f.game.Frame(0.25, Input{})
	}
	assert.InDelta(t, 1.0, f.game.RoundElapsed(), 1e-5)
	assert.InDelta(t, 1.0, f.game.Snapshot().Elapsed, 1e-5)

	f.game.SoftReset()
	f.game.Frame(0, Input{})
	assert.InDelta(t, 0.0, f.game.RoundElapsed(), 1e-6)
}

func TestGame_MoveForward(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)
	start := f.avatarPosition(t)

	f.game.Frame(frameDT, Input{Forward: true})

	pos := f.avatarPosition(t)
	assert.InDelta(t, start.X()-DefaultMoveSpeed*frameDT, pos.X(), 1e-3, "при появлении игрок смотрит в сторону -X")
	assert.InDelta(t, start.Z(), pos.Z(), 1e-3)
}

func TestGame_PushRayRespectsCooldown(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	// Перезарядка удара стартует вместе с раундом
	f.game.Frame(frameDT, Input{Primary: true})
	assert.Equal(t, 0, f.rec.Count(audio.CueHit))
	for i := 0; i < 30; i++ {
		f.game.Frame(frameDT, Input{})
	}
	require.True(t, f.game.Snapshot().HitReady)

	dir := f.game.Forward()
	target := f.entities.Spawn(world.HazardDescriptor(f.avatarPosition(t).Add(dir.Mul(4))))

	f.game.Frame(frameDT, Input{Primary: true})

	assert.Equal(t, 1, f.rec.Count(audio.CueHit))
	assert.InDelta(t, 0.5, f.rec.Played()[0].Volume, 1e-9)
	v := f.physics.LinearVelocity(target)
	assert.InDelta(t, PushSpeed, v.Len(), 1e-3)
	assert.InDelta(t, 1, v.Normalize().Dot(dir), 1e-4)
	assert.False(t, f.game.Snapshot().HitReady)

	f.game.Frame(frameDT, Input{Primary: true})
	assert.Equal(t, 1, f.rec.Count(audio.CueHit), "перезарядка 0.5 с")

	for i := 0; i < 30; i++ {
		f.game.Frame(frameDT, Input{})
	}
	assert.True(t, f.game.Snapshot().HitReady)
}

func TestGame_MissingAvatarIsSkipped(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	id, _ := f.game.Avatar()
	f.entities.RequestDestroy(id)
	f.entities.ApplyPending()

	assert.NotPanics(t, func() {
		f.game.Frame(frameDT, Input{Forward: true, Primary: true, Jump: true})
		f.game.Frame(frameDT, Input{})
	})
	assert.Equal(t, StateInGame, f.game.State())
	assert.False(t, f.game.Snapshot().AvatarAlive)
}

func TestGame_PublishesEvents(t *testing.T) {
	bus := eventbus.NewMemoryBus(64)
	defer bus.Close()

	var mu sync.Mutex
	seen := map[string]int{}
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		seen[ev.EventType]++
		mu.Unlock()
	})
	require.NoError(t, err)

	f := newFixture(t, bus)
	f.startRound(t)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[eventbus.TypeStateChanged] == 3 && seen[eventbus.TypeWorldRegenerated] == 1
	}, time.Second, 5*time.Millisecond)
}

func TestGame_SnapshotReflectsWorld(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	s := f.game.Snapshot()
	require.NotNil(t, s)
	assert.Equal(t, "in_game", s.State)
	assert.True(t, s.AvatarAlive)
	assert.Equal(t, 5, s.World.Pickups)
	assert.Equal(t, 16, s.World.Columns)
	assert.Equal(t, "low", s.World.Quality)
	assert.Equal(t, 1, s.World.Regenerations)
	assert.Equal(t, f.entities.Count(), s.World.Entities)
}

func TestLookAnglesAtSpawn(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	want := SpawnTarget.Sub(SpawnPosition).Normalize()
	got := f.game.Forward()
	assert.InDelta(t, want.X(), got.X(), 1e-4)
	assert.InDelta(t, want.Y(), got.Y(), 1e-4)
	assert.InDelta(t, want.Z(), got.Z(), 1e-4)
}

func TestGame_LookClampsPitch(t *testing.T) {
	f := newFixture(t, nil)
	f.startRound(t)

	f.game.Frame(frameDT, Input{Look: mgl32.Vec2{0, -100000}})
	assert.InDelta(t, pitchLimit, f.game.pitch, 1e-6)
}

func TestFieldOfView(t *testing.T) {
	assert.Equal(t, float32(40), FieldOfView(1))
	assert.Equal(t, float32(93), FieldOfView(5))
	assert.Equal(t, float32(160), FieldOfView(10))
	assert.Equal(t, float32(160), FieldOfView(99))
}

func TestGame_SetQualityAffectsNextWorld(t *testing.T) {
	f := newFixture(t, nil)
	f.game.Frame(SplashDuration, Input{})

	f.game.SetQuality(world.QualityMedium)
	require.True(t, f.game.StartNewGame())

	require.NotNil(t, f.game.Layout())
	assert.Equal(t, 32, f.game.Layout().Height)

	f.game.Frame(frameDT, Input{})
	assert.Equal(t, "medium", f.game.Snapshot().World.Quality)
}

func TestGame_SetVolumeClamps(t *testing.T) {
	f := newFixture(t, nil)

	f.game.SetVolume(15)
	assert.InDelta(t, 1.0, f.game.resolver.volume, 1e-9)

	f.game.SetVolume(-3)
	assert.InDelta(t, 0.0, f.game.resolver.volume, 1e-9)

	f.game.SetVolume(3)
	assert.InDelta(t, 0.3, f.game.resolver.volume, 1e-9)

	music := f.rec.MusicVolumes()
	require.Len(t, music, 3, "мелодия следует за громкостью")
	assert.InDelta(t, 1.0, music[0], 1e-9)
	assert.InDelta(t, 0.0, music[1], 1e-9)
	assert.InDelta(t, 0.3, music[2], 1e-9)
}

func TestGame_SetVolumeChangesBeepMusic(t *testing.T) {
	player := audio.NewBeepPlayer()
	require.NoError(t, player.StartMusic(1))
	g := New(Options{Audio: player, Volume: 10})

	before := peak(player.Render(2048))
	g.SetVolume(0)
	after := peak(player.Render(2048))

	assert.Greater(t, before, 0.0)
	assert.Less(t, after, before/10, "нулевая громкость глушит мелодию")
}

func peak(samples [][2]float64) float64 {
	m := 0.0
	for _, s := range samples {
		m = max(m, s[0], -s[0])
	}
	return m
}
