package vec

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestVec3_Neighbours(t *testing.T) {
	center := Vec3{X: 1, Y: 1, Z: 1}
	n := center.Neighbours()

	assert.Len(t, n, 6)
	for _, nb := range n {
		assert.Equal(t, 1.0, center.DistanceTo(nb), "сосед %v должен быть на расстоянии 1", nb)
	}
	assert.Contains(t, n[:], Vec3{X: 1, Y: 2, Z: 1})
	assert.Contains(t, n[:], Vec3{X: 0, Y: 1, Z: 1})
}

func TestVec3_AddEquals(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}.Add(Up)

	assert.True(t, v.Equals(Vec3{X: 1, Y: 3, Z: 3}))
	assert.Equal(t, mgl32.Vec3{1, 3, 3}, v.ToFloat())
}
