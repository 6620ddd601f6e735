package entity

import "github.com/go-gl/mathgl/mgl32"

// Shape описывает коллайдер
type Shape struct {
	Kind        ShapeKind
	Radius      float32    // Для ShapeBall
	HalfExtents mgl32.Vec3 // Для ShapeCuboid
}

// Ball создаёт сферический коллайдер
func Ball(radius float32) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

// Cuboid создаёт коллайдер-параллелепипед по половинам размеров
func Cuboid(hx, hy, hz float32) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec3{hx, hy, hz}}
}

// Material визуальный материал
type Material struct {
	Color     mgl32.Vec4
	Roughness float32
}

// Цвета материалов
var (
	ColorBlue  = mgl32.Vec4{0, 0, 1, 1}
	ColorRed   = mgl32.Vec4{1, 0, 0, 1}
	ColorBeige = mgl32.Vec4{0.96, 0.96, 0.86, 1}
	ColorGray  = mgl32.Vec4{0.5, 0.5, 0.5, 1}
	ColorGrass = mgl32.Vec4{0.3, 0.5, 0.3, 1}
	ColorWhite = mgl32.Vec4{1, 1, 1, 1}
)

// Descriptor - запрос на создание сущности: коллайдер, модель, трансформация и метки
type Descriptor struct {
	Category  Category
	Lifecycle Lifecycle

	Position mgl32.Vec3
	Rotation mgl32.Quat

	Shape        Shape
	Body         BodyKind
	Restitution  float32
	GravityScale float32
	LockRotation bool

	Mesh     MeshKind
	MeshSize mgl32.Vec3
	Material Material

	Illuminance float32 // Для CategoryLight
}

// Entity представляет сущность, зарегистрированную в менеджере
type Entity struct {
	ID ID
	Descriptor

	Elapsed float32 // Накопленное время (только для CategoryTimer)
}

// HasCollider сообщает, нужен ли сущности коллайдер во внешнем движке
func (e *Entity) HasCollider() bool {
	return e.Shape.Kind != ShapeNone
}

// Hook подключает внешний движок (рендер, физика) к жизненному циклу сущностей
type Hook interface {
	// OnSpawn вызывается сразу после регистрации сущности
	OnSpawn(entity *Entity)

	// OnDespawn вызывается при фактическом удалении сущности (в ApplyPending)
	OnDespawn(entity *Entity)
}

// Orientation возвращает поворот сущности; нулевой кватернион трактуется как единичный
func (d Descriptor) Orientation() mgl32.Quat {
	if d.Rotation == (mgl32.Quat{}) {
		return mgl32.QuatIdent()
	}
	return d.Rotation
}
