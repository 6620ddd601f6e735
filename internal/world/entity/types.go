package entity

import "fmt"

// ID идентификатор сущности (он же идентификатор коллайдера во внешнем движке)
type ID uint64

// Category - категория сущности, назначаемая при создании.
// Резолвер столкновений классифицирует партнёров контакта только по ней.
type Category uint8

const (
	CategoryNone     Category = iota
	CategoryGround            // Кубы поверхности и коллайдер пола: дают возможность прыгать
	CategoryHazard            // Враги: касание завершает раунд без победы
	CategoryPickup            // Синие шары
	CategoryWall              // Стены по периметру
	CategoryBoundary          // Потолок
	CategoryAvatar            // Игрок
	CategoryLight             // Источники света
	CategoryTimer             // Счётчик времени раунда
	CategoryDecor             // Визуальные объекты без коллайдера
)

var categoryNames = map[Category]string{
	CategoryNone:     "none",
	CategoryGround:   "ground",
	CategoryHazard:   "hazard",
	CategoryPickup:   "pickup",
	CategoryWall:     "wall",
	CategoryBoundary: "boundary",
	CategoryAvatar:   "avatar",
	CategoryLight:    "light",
	CategoryTimer:    "timer",
	CategoryDecor:    "decor",
}

// String возвращает строковое представление категории
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category_%d", int(c))
}

// Lifecycle - метка жизненного цикла
type Lifecycle uint8

const (
	// LifecyclePersistent - сущность переживает сброс раунда (игрок, меню)
	LifecyclePersistent Lifecycle = iota
	// LifecycleReboot - сущность создана при построении мира и удаляется при каждом сбросе
	LifecycleReboot
)

// ShapeKind форма коллайдера
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeBall
	ShapeCuboid
)

// BodyKind тип твердого тела
type BodyKind uint8

const (
	BodyFixed BodyKind = iota
	BodyDynamic
)

// MeshKind тип визуальной модели
type MeshKind uint8

const (
	MeshNone MeshKind = iota
	MeshCube
	MeshSphere
	MeshBox
	MeshPlane
)
