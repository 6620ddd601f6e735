package world

import (
	"math"

	"github.com/annel0/sky-quest/internal/vec"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// VoxelSize - длина ребра вокселя в мировых единицах
const VoxelSize float32 = 1.0

// Параметры объектов сцены
const (
	PickupRadius      float32 = VoxelSize
	HazardRadius      float32 = VoxelSize
	HazardRestitution float32 = 2.1 // Враги заметно "пружинят"
	WallHeight        float32 = 16
	CeilingHeight     float32 = 90
	LightIlluminance  float32 = 3200
)

var (
	wallHalfExtents = mgl32.Vec3{64, 0.9, 100}
	xAxis           = mgl32.Vec3{1, 0, 0}
	yAxis           = mgl32.Vec3{0, 1, 0}
)

// CenterOffset смещение, центрирующее поле в мировых координатах
func CenterOffset(width, depth int) mgl32.Vec3 {
	return mgl32.Vec3{
		-(float32(width) * VoxelSize / 2),
		0.5,
		-(float32(depth) * VoxelSize / 2),
	}
}

// ToWorld переводит ячейку поля в мировую позицию
func ToWorld(p vec.Vec3, offset mgl32.Vec3) mgl32.Vec3 {
	return p.ToFloat().Mul(VoxelSize).Add(offset)
}

// CubeDescriptor - единичный куб поверхности
func CubeDescriptor(pos mgl32.Vec3) entity.Descriptor {
	half := VoxelSize / 2
	return entity.Descriptor{
		Category:  entity.CategoryGround,
		Lifecycle: entity.LifecycleReboot,
		Position:  pos,
		Shape:     entity.Cuboid(half, half, half),
		Body:      entity.BodyFixed,
		Mesh:      entity.MeshCube,
		MeshSize:  mgl32.Vec3{VoxelSize, VoxelSize, VoxelSize},
		Material:  entity.Material{Color: entity.ColorBeige, Roughness: 0.3},
	}
}

// PickupDescriptor - синий шар
func PickupDescriptor(pos mgl32.Vec3) entity.Descriptor {
	return entity.Descriptor{
		Category:  entity.CategoryPickup,
		Lifecycle: entity.LifecycleReboot,
		Position:  pos,
		Shape:     entity.Ball(PickupRadius),
		Body:      entity.BodyFixed,
		Mesh:      entity.MeshSphere,
		MeshSize:  mgl32.Vec3{1, 1, 1},
		Material:  entity.Material{Color: entity.ColorBlue},
	}
}

// HazardDescriptor - динамический враг с повышенной упругостью
func HazardDescriptor(pos mgl32.Vec3) entity.Descriptor {
	return entity.Descriptor{
		Category:     entity.CategoryHazard,
		Lifecycle:    entity.LifecycleReboot,
		Position:     pos,
		Shape:        entity.Ball(HazardRadius),
		Body:         entity.BodyDynamic,
		Restitution:  HazardRestitution,
		GravityScale: 1,
		Mesh:         entity.MeshSphere,
		MeshSize:     mgl32.Vec3{1, 1, 1},
		Material:     entity.Material{Color: entity.ColorRed},
	}
}

// WallDescriptors - четыре стены по периметру мира
func WallDescriptors() []entity.Descriptor {
	quarter := float32(math.Pi / 2)
	standing := mgl32.QuatRotate(quarter, xAxis)
	turned := mgl32.QuatRotate(quarter, yAxis).Mul(standing)

	walls := []struct {
		pos mgl32.Vec3
		rot mgl32.Quat
	}{
		{mgl32.Vec3{32, WallHeight, 0}, turned},
		{mgl32.Vec3{0, WallHeight, -32}, standing},
		{mgl32.Vec3{-32, WallHeight, 0}, turned},
		{mgl32.Vec3{0, WallHeight, 32}, standing},
	}

	out := make([]entity.Descriptor, 0, len(walls))
	for _, w := range walls {
		out = append(out, entity.Descriptor{
			Category:  entity.CategoryWall,
			Lifecycle: entity.LifecycleReboot,
			Position:  w.pos,
			Rotation:  w.rot,
			Shape:     entity.Cuboid(wallHalfExtents.X(), wallHalfExtents.Y(), wallHalfExtents.Z()),
			Body:      entity.BodyFixed,
			Mesh:      entity.MeshBox,
			MeshSize:  wallHalfExtents,
			Material:  entity.Material{Color: entity.ColorGray, Roughness: 1},
		})
	}
	return out
}

// BoundaryDescriptors - коллайдер пола, потолок и видимая плоскость земли
func BoundaryDescriptors() []entity.Descriptor {
	return []entity.Descriptor{
		{
			// Пол считается "землёй": с него можно прыгать
			Category:  entity.CategoryGround,
			Lifecycle: entity.LifecycleReboot,
			Position:  mgl32.Vec3{0, 0.1, 0},
			Shape:     entity.Cuboid(64, 0.1, 64),
			Body:      entity.BodyFixed,
		},
		{
			Category:  entity.CategoryBoundary,
			Lifecycle: entity.LifecycleReboot,
			Position:  mgl32.Vec3{0, CeilingHeight, 0},
			Shape:     entity.Cuboid(64, 10, 64),
			Body:      entity.BodyFixed,
		},
		{
			Category:  entity.CategoryDecor,
			Lifecycle: entity.LifecycleReboot,
			Mesh:      entity.MeshPlane,
			MeshSize:  mgl32.Vec3{64, 0, 64},
			Material:  entity.Material{Color: entity.ColorGrass},
		},
	}
}

// LightDescriptor - направленный свет
func LightDescriptor() entity.Descriptor {
	return entity.Descriptor{
		Category:    entity.CategoryLight,
		Lifecycle:   entity.LifecycleReboot,
		Position:    mgl32.Vec3{0, 2, 0},
		Rotation:    mgl32.QuatRotate(-math.Pi/4, xAxis),
		Illuminance: LightIlluminance,
		Material:    entity.Material{Color: entity.ColorWhite},
	}
}

// TimerDescriptor - счётчик времени раунда
func TimerDescriptor() entity.Descriptor {
	return entity.Descriptor{
		Category:  entity.CategoryTimer,
		Lifecycle: entity.LifecycleReboot,
	}
}
