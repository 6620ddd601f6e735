package world

import "github.com/annel0/sky-quest/internal/vec"

// VoxelField - плотная трёхмерная сетка "твёрдых" ячеек, индекс [x][y][z].
// После построения не изменяется.
type VoxelField struct {
	width  int
	height int
	depth  int
	cells  []bool
}

// BuildVoxelField строит поле указанных размеров, опрашивая solid для каждой ячейки.
// Отрицательные размеры трактуются как нулевые.
func BuildVoxelField(width, height, depth int, solid func(x, y, z int) bool) *VoxelField {
	width, height, depth = max(width, 0), max(height, 0), max(depth, 0)

	f := &VoxelField{
		width:  width,
		height: height,
		depth:  depth,
		cells:  make([]bool, width*height*depth),
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				f.cells[f.index(x, y, z)] = solid(x, y, z)
			}
		}
	}
	return f
}

// Width размер по X
func (f *VoxelField) Width() int { return f.width }

// Height размер по Y
func (f *VoxelField) Height() int { return f.height }

// Depth размер по Z
func (f *VoxelField) Depth() int { return f.depth }

// InBounds проверяет, лежит ли ячейка внутри поля
func (f *VoxelField) InBounds(x, y, z int) bool {
	return x >= 0 && x < f.width &&
		y >= 0 && y < f.height &&
		z >= 0 && z < f.depth
}

// Solid возвращает true для твёрдой ячейки. Ячейки вне поля считаются пустыми.
func (f *VoxelField) Solid(x, y, z int) bool {
	if !f.InBounds(x, y, z) {
		return false
	}
	return f.cells[f.index(x, y, z)]
}

// SolidAt - то же, что Solid, для vec.Vec3
func (f *VoxelField) SolidAt(p vec.Vec3) bool {
	return f.Solid(p.X, p.Y, p.Z)
}

// SolidCount возвращает количество твёрдых ячеек
func (f *VoxelField) SolidCount() int {
	n := 0
	for _, c := range f.cells {
		if c {
			n++
		}
	}
	return n
}

func (f *VoxelField) index(x, y, z int) int {
	return (x*f.height+y)*f.depth + z
}
