package world

import "github.com/annel0/sky-quest/internal/vec"

// SampleColumns возвращает для каждой колонки (x, z) первую пустую ячейку над твёрдой.
// Колонка без твёрдых ячеек или заполненная до верха поля позиции не даёт.
// Порядок: x, затем z по возрастанию.
func SampleColumns(f *VoxelField) []vec.Vec3 {
	var positions []vec.Vec3
	for x := 0; x < f.Width(); x++ {
		for z := 0; z < f.Depth(); z++ {
			hasBlockBelow := false
			for y := 0; y < f.Height(); y++ {
				if f.Solid(x, y, z) {
					hasBlockBelow = true
				} else if hasBlockBelow {
					positions = append(positions, vec.Vec3{X: x, Y: y, Z: z})
					break
				}
			}
		}
	}
	return positions
}
