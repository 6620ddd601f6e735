package world

import (
	"testing"

	"github.com/annel0/sky-quest/internal/vec"
	"github.com/stretchr/testify/assert"
)

func solidCube(n int) *VoxelField {
	return BuildVoxelField(n, n, n, func(_, _, _ int) bool { return true })
}

func TestExtractSurface_FullCubeHidesCenter(t *testing.T) {
	field := solidCube(3)

	surface := ExtractSurface(field)

	assert.Len(t, surface, 26, "все ячейки, кроме центральной, касаются границы")
	assert.NotContains(t, surface, vec.Vec3{X: 1, Y: 1, Z: 1})
	assert.False(t, IsSurface(field, vec.Vec3{X: 1, Y: 1, Z: 1}))
}

func TestExtractSurface_EmptyNeighbourExposesCell(t *testing.T) {
	// Полный куб 3x3x3 с выбитой ячейкой (1,2,1): центр теперь открыт сверху
	field := BuildVoxelField(3, 3, 3, func(x, y, z int) bool {
		return !(x == 1 && y == 2 && z == 1)
	})

	assert.True(t, IsSurface(field, vec.Vec3{X: 1, Y: 1, Z: 1}))
	assert.False(t, IsSurface(field, vec.Vec3{X: 1, Y: 2, Z: 1}), "пустая ячейка не бывает поверхностью")
	assert.Len(t, ExtractSurface(field), 26)
}

func TestExtractSurface_InteriorOfLargerCube(t *testing.T) {
	field := solidCube(5)

	surface := ExtractSurface(field)

	// 125 ячеек минус внутренний куб 3x3x3
	assert.Len(t, surface, 125-27)
	for _, p := range surface {
		onBoundary := p.X == 0 || p.X == 4 || p.Y == 0 || p.Y == 4 || p.Z == 0 || p.Z == 4
		assert.True(t, onBoundary, "ячейка %v не на границе, но помечена поверхностью", p)
	}
}

func TestExtractSurface_MatchesDefinition(t *testing.T) {
	// Шахматный узор: каждая твёрдая ячейка имеет пустых соседей
	field := BuildVoxelField(3, 3, 3, func(x, y, z int) bool { return (x+y+z)%2 == 0 })

	surface := ExtractSurface(field)

	assert.Len(t, surface, field.SolidCount())
	for _, p := range surface {
		assert.True(t, field.SolidAt(p))
	}
}

func TestExtractSurface_DeterministicOrder(t *testing.T) {
	field := solidCube(3)

	surface := ExtractSurface(field)

	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 0}, surface[0])
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 1}, surface[1])
	assert.Equal(t, vec.Vec3{X: 2, Y: 2, Z: 2}, surface[len(surface)-1])
	assert.Equal(t, surface, ExtractSurface(field))
}

func TestExtractSurface_EmptyField(t *testing.T) {
	field := BuildVoxelField(3, 3, 3, func(_, _, _ int) bool { return false })
	assert.Empty(t, ExtractSurface(field))
}
