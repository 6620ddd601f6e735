package world

import "github.com/annel0/sky-quest/internal/vec"

// IsSurface сообщает, является ли ячейка видимой поверхностью:
// она твёрдая и хотя бы одна из шести соседних ячеек пуста или лежит за границей поля.
func IsSurface(f *VoxelField, p vec.Vec3) bool {
	if !f.SolidAt(p) {
		return false
	}
	for _, n := range p.Neighbours() {
		// Solid возвращает false за границей поля, поэтому граница считается открытой гранью
		if !f.SolidAt(n) {
			return true
		}
	}
	return false
}

// ExtractSurface возвращает все поверхностные ячейки в порядке x, y, z по возрастанию
func ExtractSurface(f *VoxelField) []vec.Vec3 {
	var surface []vec.Vec3
	for x := 0; x < f.Width(); x++ {
		for y := 0; y < f.Height(); y++ {
			for z := 0; z < f.Depth(); z++ {
				p := vec.Vec3{X: x, Y: y, Z: z}
				if IsSurface(f, p) {
					surface = append(surface, p)
				}
			}
		}
	}
	return surface
}
