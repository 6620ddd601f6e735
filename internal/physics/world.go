package physics

import (
	"math"
	"sort"
	"sync"

	"github.com/annel0/sky-quest/internal/logging"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultGravity - ускорение свободного падения
var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

// maxSubstep ограничивает шаг интегрирования, чтобы быстрые тела не проходили сквозь кубы.
// За один Step выполняется не больше maxSubsteps подшагов, остаток dt отбрасывается.
const (
	maxSubstep  float32 = 1.0 / 120
	maxSubsteps         = 8
)

// Body твердое тело в симуляции
type Body struct {
	ID           entity.ID
	Category     entity.Category
	Kind         entity.BodyKind
	Shape        entity.Shape
	Position     mgl32.Vec3
	Rotation     mgl32.Quat
	Velocity     mgl32.Vec3
	Restitution  float32
	GravityScale float32
	LockRotation bool
}

// IsDynamic возвращает true для тел, на которые действует гравитация
func (b *Body) IsDynamic() bool {
	return b.Kind == entity.BodyDynamic
}

// QueryFilter фильтр для запросов к миру
type QueryFilter struct {
	ExcludeFixed bool
	Exclude      entity.ID
}

func (f QueryFilter) skip(b *Body) bool {
	if f.ExcludeFixed && !b.IsDynamic() {
		return true
	}
	return f.Exclude != 0 && b.ID == f.Exclude
}

// RayHit результат каста луча
type RayHit struct {
	ID  entity.ID
	TOI float32
}

// World упрощенный физический мир без рендера.
// Реализует entity.Hook: тела создаются и удаляются вместе с сущностями.
type World struct {
	mu       sync.RWMutex
	bodies   map[entity.ID]*Body
	contacts map[entity.ID][]entity.ID
	gravity  mgl32.Vec3
	steps    uint64

	static      *staticGrid
	staticDirty bool
}

// NewWorld создает пустой физический мир
func NewWorld() *World {
	return &World{
		bodies:   make(map[entity.ID]*Body),
		contacts: make(map[entity.ID][]entity.ID),
		gravity:  DefaultGravity,
	}
}

// SetGravity меняет вектор гравитации
func (w *World) SetGravity(g mgl32.Vec3) {
	w.mu.Lock()
	w.gravity = g
	w.mu.Unlock()
}

// OnSpawn регистрирует тело для сущности с коллайдером
func (w *World) OnSpawn(e *entity.Entity) {
	if !e.HasCollider() {
		return
	}
	d := e.Descriptor
	scale := d.GravityScale
	if scale == 0 {
		scale = 1
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if d.Body != entity.BodyDynamic {
		w.staticDirty = true
	}
	w.bodies[e.ID] = &Body{
		ID:           e.ID,
		Category:     d.Category,
		Kind:         d.Body,
		Shape:        d.Shape,
		Position:     d.Position,
		Rotation:     d.Orientation(),
		Restitution:  d.Restitution,
		GravityScale: scale,
		LockRotation: d.LockRotation,
	}
}

// OnDespawn удаляет тело и все его контакты
func (w *World) OnDespawn(e *entity.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[e.ID]
	if !ok {
		return
	}
	if !b.IsDynamic() {
		w.staticDirty = true
	}
	delete(w.bodies, e.ID)
	delete(w.contacts, e.ID)
	for id, partners := range w.contacts {
		w.contacts[id] = removeID(partners, e.ID)
	}
}

// Body возвращает копию тела
func (w *World) Body(id entity.ID) (Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// BodyCount возвращает количество тел
func (w *World) BodyCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// SetLinearVelocity задает скорость тела. Неизвестные и фиксированные тела игнорируются.
func (w *World) SetLinearVelocity(id entity.ID, v mgl32.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok && b.IsDynamic() {
		b.Velocity = v
	}
}

// LinearVelocity возвращает скорость тела
func (w *World) LinearVelocity(id entity.ID) mgl32.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if b, ok := w.bodies[id]; ok {
		return b.Velocity
	}
	return mgl32.Vec3{}
}

// SetTransform телепортирует тело и обнуляет его скорость
func (w *World) SetTransform(id entity.ID, pos mgl32.Vec3, rot mgl32.Quat) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	b.Position = pos
	b.Rotation = rot
	b.Velocity = mgl32.Vec3{}
	delete(w.contacts, id)
	if !b.IsDynamic() {
		w.staticDirty = true
	}
}

// Translate сдвигает тело, не меняя скорость
func (w *World) Translate(id entity.ID, delta mgl32.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok && b.IsDynamic() {
		b.Position = b.Position.Add(delta)
	}
}

// Transform возвращает позицию и поворот тела
func (w *World) Transform(id entity.ID) (mgl32.Vec3, mgl32.Quat, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bodies[id]
	if !ok {
		return mgl32.Vec3{}, mgl32.QuatIdent(), false
	}
	return b.Position, b.Rotation, true
}

// ContactsWith возвращает партнеров по контакту за последний шаг, отсортированных по ID
func (w *World) ContactsWith(id entity.ID) []entity.ID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	partners := w.contacts[id]
	if len(partners) == 0 {
		return nil
	}
	out := make([]entity.ID, len(partners))
	copy(out, partners)
	return out
}

// Step продвигает симуляцию на dt секунд и пересобирает пары контактов
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	dynamic := w.dynamicBodies()
	grid := w.staticIndex()
	touching := make(map[[2]entity.ID]struct{})

	remaining := min(dt, maxSubstep*maxSubsteps)
	for remaining > 0 {
		h := min(remaining, maxSubstep)
		remaining -= h

		for _, b := range dynamic {
			b.Velocity = b.Velocity.Add(w.gravity.Mul(b.GravityScale * h))
			b.Position = b.Position.Add(b.Velocity.Mul(h))
		}
		for i, a := range dynamic {
			for _, s := range grid.query(expand(shapeBounds(a), contactSkin)) {
				if w.resolve(a, s) {
					touching[pairKey(a.ID, s.ID)] = struct{}{}
				}
			}
			for _, other := range dynamic[i+1:] {
				if w.resolve(a, other) {
					touching[pairKey(a.ID, other.ID)] = struct{}{}
				}
			}
		}
	}

	w.contacts = make(map[entity.ID][]entity.ID, len(touching))
	for pair := range touching {
		w.contacts[pair[0]] = append(w.contacts[pair[0]], pair[1])
		w.contacts[pair[1]] = append(w.contacts[pair[1]], pair[0])
	}
	for id := range w.contacts {
		ids := w.contacts[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	w.steps++
	if w.steps%600 == 0 {
		logging.Trace("⚙️ Физика: шаг %d, тел %d, пар контактов %d", w.steps, len(w.bodies), len(touching))
	}
}

// dynamicBodies возвращает динамические тела по возрастанию ID
func (w *World) dynamicBodies() []*Body {
	var dynamic []*Body
	for _, b := range w.bodies {
		if b.IsDynamic() {
			dynamic = append(dynamic, b)
		}
	}
	sort.Slice(dynamic, func(i, j int) bool { return dynamic[i].ID < dynamic[j].ID })
	return dynamic
}

// staticIndex пересобирает сетку статических тел, если они менялись с прошлого шага
func (w *World) staticIndex() *staticGrid {
	if w.static != nil && !w.staticDirty {
		return w.static
	}
	var static []*Body
	for _, b := range w.bodies {
		if !b.IsDynamic() {
			static = append(static, b)
		}
	}
	w.static = newStaticGrid(static)
	w.staticDirty = false
	logging.Trace("⚙️ Физика: сетка статических тел пересобрана (%d тел, %d ячеек)", len(static), len(w.static.cells))
	return w.static
}

// resolve выталкивает динамическое тело a из b и отражает скорость. Возвращает true при касании.
func (w *World) resolve(a, b *Body) bool {
	if a.Shape.Kind != entity.ShapeBall {
		return false
	}

	var normal mgl32.Vec3
	var depth float32
	var touching bool
	switch b.Shape.Kind {
	case entity.ShapeBall:
		normal, depth, touching = sphereVsSphere(a.Position, a.Shape.Radius, b.Position, b.Shape.Radius)
	case entity.ShapeCuboid:
		normal, depth, touching = sphereVsBox(a.Position, a.Shape.Radius, shapeBounds(b))
	default:
		return false
	}
	if !touching {
		return false
	}
	if depth <= 0 {
		return true
	}

	restitution := (a.Restitution + b.Restitution) / 2
	if b.IsDynamic() {
		half := normal.Mul(depth / 2)
		a.Position = a.Position.Add(half)
		b.Position = b.Position.Sub(half)

		rel := a.Velocity.Sub(b.Velocity)
		vn := rel.Dot(normal)
		if vn < 0 {
			impulse := normal.Mul(-(1 + restitution) * vn / 2)
			a.Velocity = a.Velocity.Add(impulse)
			b.Velocity = b.Velocity.Sub(impulse)
		}
		return true
	}

	a.Position = a.Position.Add(normal.Mul(depth))
	vn := a.Velocity.Dot(normal)
	if vn < 0 {
		a.Velocity = a.Velocity.Sub(normal.Mul((1 + restitution) * vn))
	}
	return true
}

// CastRay ищет ближайшее тело вдоль луча на расстоянии не больше maxTOI
func (w *World) CastRay(origin, dir mgl32.Vec3, maxTOI float32, filter QueryFilter) (RayHit, bool) {
	if dir.Len() < 1e-6 {
		return RayHit{}, false
	}
	dir = dir.Normalize()

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := RayHit{TOI: float32(math.MaxFloat32)}
	found := false
	for _, b := range w.bodies {
		if filter.skip(b) {
			continue
		}
		var t float32
		var ok bool
		switch b.Shape.Kind {
		case entity.ShapeBall:
			t, ok = raySphere(origin, dir, b.Position, b.Shape.Radius)
		case entity.ShapeCuboid:
			t, ok = rayBox(origin, dir, shapeBounds(b))
		}
		if !ok || t > maxTOI {
			continue
		}
		if t < best.TOI || (t == best.TOI && b.ID < best.ID) {
			best = RayHit{ID: b.ID, TOI: t}
			found = true
		}
	}
	return best, found
}

func pairKey(a, b entity.ID) [2]entity.ID {
	if a > b {
		a, b = b, a
	}
	return [2]entity.ID{a, b}
}

func removeID(ids []entity.ID, id entity.ID) []entity.ID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
