package vec

import "github.com/go-gl/mathgl/mgl32"

// Vec3 представляет трехмерный вектор с целочисленными координатами (ячейка воксельной сетки)
type Vec3 struct {
	X int
	Y int
	Z int
}

// Соседи по шести осям: -X, +X, -Y, +Y, -Z, +Z
var axialOffsets = [6]Vec3{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

// Up - единичный шаг вверх по оси Y
var Up = Vec3{Y: 1}

// Neighbours возвращает шесть соседних по граням ячеек (без проверки границ)
func (v Vec3) Neighbours() [6]Vec3 {
	var out [6]Vec3
	for i, off := range axialOffsets {
		out[i] = v.Add(off)
	}
	return out
}

// DistanceTo возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return float64(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// ToFloat переводит координаты ячейки в вектор mgl32 без масштабирования
func (v Vec3) ToFloat() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
