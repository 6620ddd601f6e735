package physics

import (
	"math"

	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// contactSkin - зазор, при котором покоящиеся тела всё ещё считаются касающимися
const contactSkin float32 = 0.05

// AABB - выровненный по осям параллелепипед
type AABB struct {
	Min, Max mgl32.Vec3
}

// NewAABB строит AABB по центру и половинам размеров
func NewAABB(center, half mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// ClosestPoint возвращает ближайшую к p точку внутри коробки
func (b AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(p.X(), b.Min.X(), b.Max.X()),
		mgl32.Clamp(p.Y(), b.Min.Y(), b.Max.Y()),
		mgl32.Clamp(p.Z(), b.Min.Z(), b.Max.Z()),
	}
}

// Contains проверяет, находится ли точка внутри коробки
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// CheckBoxCollision проверяет пересечение двух коробок
func CheckBoxCollision(a, b AABB) bool {
	return a.Max.X() > b.Min.X() && a.Min.X() < b.Max.X() &&
		a.Max.Y() > b.Min.Y() && a.Min.Y() < b.Max.Y() &&
		a.Max.Z() > b.Min.Z() && a.Min.Z() < b.Max.Z()
}

// worldAABB строит AABB повернутого параллелепипеда (для поворотов на 90° - точный)
func worldAABB(center mgl32.Vec3, rot mgl32.Quat, half mgl32.Vec3) AABB {
	m := rot.Mat4().Mat3()
	var extent mgl32.Vec3
	for i := 0; i < 3; i++ {
		row := m.Row(i)
		extent[i] = abs32(row[0])*half[0] + abs32(row[1])*half[1] + abs32(row[2])*half[2]
	}
	return NewAABB(center, extent)
}

// sphereVsBox возвращает нормаль выталкивания сферы из коробки и глубину проникновения
func sphereVsBox(center mgl32.Vec3, radius float32, box AABB) (normal mgl32.Vec3, depth float32, touching bool) {
	closest := box.ClosestPoint(center)
	delta := center.Sub(closest)
	dist := delta.Len()

	if dist > radius+contactSkin {
		return mgl32.Vec3{}, 0, false
	}
	if dist < 1e-6 {
		// Центр внутри коробки: выталкиваем вверх
		return mgl32.Vec3{0, 1, 0}, radius + (box.Max.Y() - center.Y()), true
	}
	return delta.Mul(1 / dist), radius - dist, true
}

// sphereVsSphere возвращает нормаль от b к a и глубину проникновения
func sphereVsSphere(a mgl32.Vec3, ra float32, b mgl32.Vec3, rb float32) (normal mgl32.Vec3, depth float32, touching bool) {
	delta := a.Sub(b)
	dist := delta.Len()
	if dist > ra+rb+contactSkin {
		return mgl32.Vec3{}, 0, false
	}
	if dist < 1e-6 {
		return mgl32.Vec3{0, 1, 0}, ra + rb, true
	}
	return delta.Mul(1 / dist), ra + rb - dist, true
}

// raySphere возвращает расстояние до пересечения луча со сферой
func raySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// rayBox - пересечение луча с AABB методом плит
func rayBox(origin, dir mgl32.Vec3, box AABB) (float32, bool) {
	tmin := float32(0)
	tmax := float32(math.MaxFloat32)
	for i := 0; i < 3; i++ {
		if abs32(dir[i]) < 1e-8 {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (box.Min[i] - origin[i]) * inv
		t2 := (box.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// shapeBounds возвращает AABB тела
func shapeBounds(b *Body) AABB {
	switch b.Shape.Kind {
	case entity.ShapeBall:
		r := b.Shape.Radius
		return NewAABB(b.Position, mgl32.Vec3{r, r, r})
	default:
		return worldAABB(b.Position, b.Rotation, b.Shape.HalfExtents)
	}
}
