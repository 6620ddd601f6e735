package game

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/annel0/sky-quest/internal/audio"
	"github.com/annel0/sky-quest/internal/eventbus"
	"github.com/annel0/sky-quest/internal/logging"
	"github.com/annel0/sky-quest/internal/physics"
	"github.com/annel0/sky-quest/internal/world"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Параметры игрока
const (
	DefaultMoveSpeed   float32 = 12
	DefaultSensitivity float32 = 0.00012
	JumpSpeedBoost     float32 = 1.3 // Ускорение по горизонтали во время прыжка
	JumpLift           float32 = 40  // Вертикальная скорость = JumpLift * оставшееся время
	AvatarRadius       float32 = 1
	AvatarGravityScale float32 = 3

	HitCooldownDuration float32 = 0.5
	RayMaxDistance      float32 = 7
	PushSpeed           float32 = 30

	pitchLimit  float32 = 1.54
	windowScale float32 = 720 // Меньшая сторона окна, на неё умножается чувствительность
)

var (
	// SpawnPosition - точка появления игрока
	SpawnPosition = mgl32.Vec3{0, 80, 0}
	// SpawnTarget - точка, на которую игрок смотрит при появлении
	SpawnTarget = mgl32.Vec3{-1, -1, 0}
)

// Options - зависимости и настройки игры. Нулевые поля заменяются значениями по умолчанию.
type Options struct {
	Entities *entity.Manager
	Physics  Physics
	Pipeline *world.Pipeline
	Quality  world.DisplayQuality
	Audio    audio.Player
	Volume   int // 0..10
	Bus      eventbus.EventBus
	Tracer   trace.Tracer

	MoveSpeed   float32
	Sensitivity float32
	Fov         int // 1..10
}

// Game владеет состоянием сессии и выполняет кадры в одном потоке.
// Из других горутин доступен только Snapshot.
type Game struct {
	entities *entity.Manager
	physics  Physics
	pipeline *world.Pipeline
	quality  world.DisplayQuality
	audio    audio.Player
	volume   int
	resolver *Resolver
	bus      eventbus.EventBus
	tracer   trace.Tracer

	moveSpeed   float32
	sensitivity float32
	fov         int

	states  map[GameState]State
	state   GameState
	session SessionState
	jump    JumpState
	pause   Pause
	hit     *Cooldown

	avatar         entity.ID
	yaw, pitch     float32
	avatarWarned   bool
	roundTimer     entity.ID
	layout         *world.Layout
	regenerations  int
	frame          uint64
	lastFrameDelta float32

	snapshot atomic.Pointer[Snapshot]
}

// New создает игру в состоянии Splash
func New(opts Options) *Game {
	if opts.Entities == nil {
		opts.Entities = entity.NewManager()
	}
	if opts.Physics == nil {
		opts.Physics = physics.NewWorld()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = world.NewPipeline(world.NewGenerator(), world.NewPlacer(nil, world.DefaultPickupCount))
	}
	if opts.Audio == nil {
		opts.Audio = audio.NopPlayer{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/annel0/sky-quest/internal/game")
	}
	if opts.MoveSpeed <= 0 {
		opts.MoveSpeed = DefaultMoveSpeed
	}
	if opts.Sensitivity <= 0 {
		opts.Sensitivity = DefaultSensitivity
	}
	if opts.Fov <= 0 {
		opts.Fov = 5
	}

	// Физика получает тела вместе с сущностями
	if hook, ok := opts.Physics.(entity.Hook); ok {
		opts.Entities.AddHook(hook)
	}

	g := &Game{
		entities:    opts.Entities,
		physics:     opts.Physics,
		pipeline:    opts.Pipeline,
		quality:     opts.Quality,
		audio:       opts.Audio,
		volume:      opts.Volume,
		resolver:    NewResolver(opts.Entities, opts.Audio, audio.VolumeScalar(opts.Volume)),
		bus:         opts.Bus,
		tracer:      opts.Tracer,
		moveSpeed:   opts.MoveSpeed,
		sensitivity: opts.Sensitivity,
		fov:         opts.Fov,
		states:      defaultStates(),
		state:       StateSplash,
		jump:        NewJumpState(),
		hit:         NewCooldown(HitCooldownDuration),
	}
	g.states[StateSplash].Enter(g)
	g.publishSnapshot()
	return g
}

// Entities возвращает реестр сущностей
func (g *Game) Entities() *entity.Manager { return g.entities }

// State возвращает текущее состояние
func (g *Game) State() GameState { return g.state }

// Session возвращает копию счёта
func (g *Game) Session() SessionState { return g.session }

// Jump возвращает копию состояния прыжка
func (g *Game) Jump() JumpState { return g.jump }

// Paused сообщает, выставлен ли флаг паузы
func (g *Game) Paused() bool { return g.pause.Paused }

// Avatar возвращает ID игрока, если он существует
func (g *Game) Avatar() (entity.ID, bool) { return g.avatar, g.avatar != 0 }

// Layout возвращает раскладку текущего мира
func (g *Game) Layout() *world.Layout { return g.layout }

// SetVolume меняет громкость сигналов и фоновой мелодии (0..10)
func (g *Game) SetVolume(level int) {
	g.volume = max(0, min(level, 10))
	g.resolver.SetVolume(audio.VolumeScalar(g.volume))
	if music, ok := g.audio.(audio.MusicPlayer); ok {
		music.SetMusicVolume(audio.VolumeScalar(g.volume))
	}
}

// SetQuality меняет высоту мира для следующих генераций
func (g *Game) SetQuality(q world.DisplayQuality) {
	g.quality = q
}

// StartNewGame - команда меню "Новая игра"
func (g *Game) StartNewGame() bool {
	if g.state != StateMenu && g.state != StatePaused {
		return false
	}
	g.setState(StateNewGame)
	return true
}

// Resume - команда меню "Продолжить"
func (g *Game) Resume() bool {
	if g.state != StateMenu && g.state != StatePaused {
		return false
	}
	g.pause.Paused = false
	g.setState(StateInGame)
	return true
}

// PauseGame останавливает раунд без выхода в меню
func (g *Game) PauseGame() bool {
	if g.state != StateInGame {
		return false
	}
	g.setState(StatePaused)
	return true
}

// Frame выполняет один кадр длительностью dt секунд
func (g *Game) Frame(dt float32, in Input) {
	g.frame++
	g.lastFrameDelta = dt

	if next := g.states[g.state].Update(g, dt, in); next != g.state {
		g.setState(next)
	}

	// Граница кадра: удаления применяются только здесь
	if n := g.entities.ApplyPending(); n > 0 {
		logging.Trace("🧹 Удалено сущностей: %d", n)
	}
	g.publishSnapshot()
}

func (g *Game) setState(to GameState) {
	from := g.state
	g.states[from].Exit(g)
	g.state = to
	logging.Info("🔀 Состояние: %s -> %s", from, to)
	g.publish(eventbus.TypeStateChanged, eventbus.StateChanged{From: from.String(), To: to.String()})
	g.states[to].Enter(g)
}

// EnterNewGame - жёсткий сброс: удалить весь мир раунда, обнулить счёт раунда, построить мир заново
func (g *Game) EnterNewGame() {
	destroyed := g.entities.DestroyTagged(entity.LifecycleReboot)
	g.session.Collected = 0
	g.session.IsWon = false
	logging.Info("🆕 Новая игра: к удалению %d сущностей", destroyed)
	g.regenerateWorld("new_game")
}

// SoftReset - сброс после победы или поражения: игрок возвращается на старт, мир строится заново.
// Wins не меняется.
func (g *Game) SoftReset() {
	g.session.IsWon = false

	if id, ok := g.Avatar(); ok {
		g.yaw, g.pitch = lookAngles(SpawnPosition, SpawnTarget)
		g.physics.SetTransform(id, SpawnPosition, g.facing())
	}
	destroyed := g.entities.DestroyTagged(entity.LifecycleReboot, g.avatar)
	logging.Info("🔁 Сброс раунда: к удалению %d сущностей, побед %d", destroyed, g.session.Wins)
	g.regenerateWorld("round_won")
}

// regenerateWorld строит новый мир и создает все его сущности
func (g *Game) regenerateWorld(reason string) {
	_, span := g.tracer.Start(context.Background(), "world.regenerate",
		trace.WithAttributes(
			attribute.String("reason", reason),
			attribute.String("quality", g.quality.String()),
		))
	defer span.End()

	layout := g.pipeline.Build(g.quality)
	g.layout = layout
	g.regenerations++

	g.roundTimer = 0
	for _, d := range layout.Descriptors() {
		id := g.entities.Spawn(d)
		if d.Category == entity.CategoryTimer {
			g.roundTimer = id
		}
	}

	if len(layout.Columns) == 0 {
		logging.Debug("🌫️ Мир без колонок: шары и враги не расставлены")
	}
	span.SetAttributes(
		attribute.Int64("seed", layout.Seed),
		attribute.Int("surface", len(layout.Surface)),
		attribute.Int("pickups", len(layout.Batch.Pickups)),
		attribute.Int("hazards", len(layout.Batch.Hazards)),
	)
	logging.Info("🌍 Мир построен (%s): seed=%d, %dx%dx%d, поверхность %d, шаров %d, врагов %d",
		reason, layout.Seed, layout.Width, layout.Height, layout.Depth,
		len(layout.Surface), len(layout.Batch.Pickups), len(layout.Batch.Hazards))

	g.publish(eventbus.TypeWorldRegenerated, eventbus.WorldRegenerated{
		Reason:     reason,
		Seed:       layout.Seed,
		Quality:    g.quality.String(),
		SolidCount: layout.SolidCount,
		Surface:    len(layout.Surface),
		Columns:    len(layout.Columns),
		Pickups:    len(layout.Batch.Pickups),
		Hazards:    len(layout.Batch.Hazards),
	})
}

// spawnAvatar создает игрока, если его ещё нет
func (g *Game) spawnAvatar() {
	if g.avatar != 0 {
		return
	}
	g.yaw, g.pitch = lookAngles(SpawnPosition, SpawnTarget)
	g.avatar = g.entities.Spawn(entity.Descriptor{
		Category:     entity.CategoryAvatar,
		Lifecycle:    entity.LifecyclePersistent,
		Position:     SpawnPosition,
		Rotation:     g.facing(),
		Shape:        entity.Ball(AvatarRadius),
		Body:         entity.BodyDynamic,
		GravityScale: AvatarGravityScale,
		LockRotation: true,
	})
	g.avatarWarned = false
	logging.Debug("🧍 Игрок создан: id=%d", g.avatar)
}

// despawnAvatar удаляет игрока в конце кадра
func (g *Game) despawnAvatar() {
	if g.avatar == 0 {
		return
	}
	g.entities.RequestDestroy(g.avatar)
	g.avatar = 0
}

// avatarAlive проверяет, что игрок существует, и один раз предупреждает, если нет
func (g *Game) avatarAlive() bool {
	if g.avatar != 0 {
		if _, ok := g.entities.Get(g.avatar); ok && !g.entities.IsPendingDestroy(g.avatar) {
			return true
		}
	}
	if !g.avatarWarned {
		logging.Warn("⚠️ Игрок не найден, кадр пропущен")
		g.avatarWarned = true
	}
	return false
}

// tick - кадр в состоянии InGame:
// ввод -> прыжок -> физика -> контакты -> луч -> таймеры -> проверка победы
func (g *Game) tick(dt float32, in Input) {
	alive := g.avatarAlive()

	if alive {
		g.look(in.Look)
		if in.Jump {
			g.jump.Request()
		}
		g.move(dt, in)
	}
	g.jump.Tick(dt)

	g.physics.Step(dt)

	if alive {
		outcome := g.resolver.Resolve(&g.session, &g.jump, g.physics.ContactsWith(g.avatar))
		g.report(outcome)

		if in.Primary && g.hit.Finished() {
			g.castPushRay()
		}
	}

	g.hit.Tick(dt)
	if timer, ok := g.entities.Get(g.roundTimer); ok {
		timer.Elapsed += dt
	}

	// Таймер нового мира стартует с нуля: кадр победы уже учтен старым
	if g.session.IsWon {
		g.SoftReset()
	}
}

// look поворачивает взгляд игрока по смещению мыши
func (g *Game) look(delta mgl32.Vec2) {
	if delta == (mgl32.Vec2{}) {
		return
	}
	g.pitch -= mgl32.DegToRad(g.sensitivity * delta.Y() * windowScale)
	g.yaw -= mgl32.DegToRad(g.sensitivity * delta.X() * windowScale)
	g.pitch = mgl32.Clamp(g.pitch, -pitchLimit, pitchLimit)
}

// move сдвигает игрока по нажатым клавишам
func (g *Game) move(dt float32, in Input) {
	localZ := g.facing().Rotate(mgl32.Vec3{0, 0, 1})
	forward := mgl32.Vec3{-localZ.X(), 0, -localZ.Z()}
	right := mgl32.Vec3{localZ.Z(), 0, -localZ.X()}

	var velocity mgl32.Vec3
	if in.Forward {
		velocity = velocity.Add(forward)
	}
	if in.Backward {
		velocity = velocity.Sub(forward)
	}
	if in.Left {
		velocity = velocity.Sub(right)
	}
	if in.Right {
		velocity = velocity.Add(right)
	}
	if velocity.Len() > 1e-6 {
		velocity = velocity.Normalize().Mul(g.moveSpeed)
	} else {
		velocity = mgl32.Vec3{}
	}

	if g.jump.Jumping {
		velocity = velocity.Mul(JumpSpeedBoost)
		velocity[1] = JumpLift * g.jump.Elapsed
	}
	if velocity != (mgl32.Vec3{}) {
		g.physics.Translate(g.avatar, velocity.Mul(dt))
	}
}

// castPushRay отталкивает динамическое тело перед игроком
func (g *Game) castPushRay() {
	origin, _, ok := g.physics.Transform(g.avatar)
	if !ok {
		return
	}
	dir := g.Forward()
	hit, ok := g.physics.CastRay(origin, dir, RayMaxDistance, physics.QueryFilter{
		ExcludeFixed: true,
		Exclude:      g.avatar,
	})
	if !ok {
		return
	}

	g.audio.Play(audio.CueHit, audio.VolumeScalar(g.volume))
	g.hit.Restart()
	g.physics.SetLinearVelocity(hit.ID, dir.Mul(PushSpeed))
	g.publish(eventbus.TypeHazardPushed, eventbus.HazardPushed{EntityID: uint64(hit.ID), Distance: hit.TOI})
}

// report публикует события по итогам разрешения контактов
func (g *Game) report(o Outcome) {
	for _, id := range o.Hazards {
		g.publish(eventbus.TypeHazardHit, eventbus.HazardHit{EntityID: uint64(id)})
	}
	for _, id := range o.Collected {
		g.publish(eventbus.TypePickupCollected, eventbus.PickupCollected{EntityID: uint64(id), Collected: g.session.Collected})
	}
	if o.RoundWon {
		logging.Info("🏆 Победа! Всего побед: %d", g.session.Wins)
		g.publish(eventbus.TypeRoundWon, eventbus.RoundWon{Wins: g.session.Wins})
	}
	if len(o.Hazards) > 0 {
		logging.Info("💀 Игрок коснулся врага")
	}
}

// Forward возвращает направление взгляда игрока
func (g *Game) Forward() mgl32.Vec3 {
	return g.facing().Rotate(mgl32.Vec3{0, 0, -1})
}

func (g *Game) facing() mgl32.Quat {
	return mgl32.QuatRotate(g.yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(g.pitch, mgl32.Vec3{1, 0, 0}))
}

// lookAngles возвращает рыскание и тангаж взгляда из from в target
func lookAngles(from, target mgl32.Vec3) (yaw, pitch float32) {
	dir := target.Sub(from)
	if dir.Len() < 1e-6 {
		return 0, 0
	}
	dir = dir.Normalize()
	yaw = float32(math.Atan2(float64(-dir.X()), float64(-dir.Z())))
	pitch = float32(math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1))))
	return yaw, pitch
}

// FieldOfView переводит настройку 1..10 в угол обзора 40..160 градусов
func FieldOfView(level int) float32 {
	level = max(1, min(level, 10))
	scaled := float64(level-1) / 9
	return float32(math.Round(40 + 120*scaled))
}

// publish отправляет событие в шину, если она подключена
func (g *Game) publish(eventType string, payload interface{}) {
	if g.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventType, eventbus.SourceGame, payload)
	if err != nil {
		logging.Warn("⚠️ Событие %s не создано: %v", eventType, err)
		return
	}
	if err := g.bus.Publish(context.Background(), ev); err != nil {
		logging.Debug("Событие %s не опубликовано: %v", eventType, err)
	}
}
