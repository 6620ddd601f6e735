package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/sky-quest/internal/vec"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterOffsetAndToWorld(t *testing.T) {
	offset := CenterOffset(64, 64)
	assert.Equal(t, mgl32.Vec3{-32, 0.5, -32}, offset)

	assert.Equal(t, mgl32.Vec3{-22, 3.5, -27}, ToWorld(vec.Vec3{X: 10, Y: 3, Z: 5}, offset))
}

func TestPipeline_BuildWithStubNoise(t *testing.T) {
	gen := NewGenerator(WithNoiseFactory(stubFactory(layerNoise{})))
	placer := NewPlacer(rand.New(rand.NewSource(5)), DefaultPickupCount)

	layout := NewPipeline(gen, placer).WithSize(4, 4).Build(QualityLow)

	assert.Equal(t, 8, layout.Height, "низкое качество даёт высоту 8")
	assert.Equal(t, 4*4*4, layout.SolidCount, "нижняя половина по Y твёрдая")
	assert.Len(t, layout.Columns, 16)
	assert.Len(t, layout.Batch.Pickups, 5)
	// Внутренний слой y=1..2 колонок 1..2 закрыт со всех сторон
	assert.Len(t, layout.Surface, 64-2*2*2)
}

func TestLayout_Descriptors(t *testing.T) {
	layout := &Layout{
		Width:   4,
		Height:  4,
		Depth:   4,
		Surface: []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}},
		Batch: PlacementBatch{
			Pickups: []vec.Vec3{{X: 0, Y: 1, Z: 0}},
			Hazards: []vec.Vec3{{X: 1, Y: 1, Z: 0}},
		},
	}

	descs := layout.Descriptors()

	counts := make(map[entity.Category]int)
	for _, d := range descs {
		assert.Equal(t, entity.LifecycleReboot, d.Lifecycle, "все объекты мира помечаются Reboot")
		counts[d.Category]++
	}
	// 2 куба + коллайдер пола
	assert.Equal(t, 3, counts[entity.CategoryGround])
	assert.Equal(t, 1, counts[entity.CategoryPickup])
	assert.Equal(t, 1, counts[entity.CategoryHazard])
	assert.Equal(t, 4, counts[entity.CategoryWall])
	assert.Equal(t, 1, counts[entity.CategoryBoundary])
	assert.Equal(t, 1, counts[entity.CategoryLight])
	assert.Equal(t, 1, counts[entity.CategoryTimer])
	assert.Equal(t, 1, counts[entity.CategoryDecor])

	require.Equal(t, entity.CategoryGround, descs[0].Category)
	assert.Equal(t, mgl32.Vec3{-2, 0.5, -2}, descs[0].Position)

	hazard := descs[3]
	require.Equal(t, entity.CategoryHazard, hazard.Category)
	assert.Equal(t, entity.BodyDynamic, hazard.Body)
	assert.Equal(t, HazardRestitution, hazard.Restitution)
	assert.Equal(t, entity.ShapeBall, hazard.Shape.Kind)
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("HIGH")
	require.NoError(t, err)
	assert.Equal(t, QualityHigh, q)
	assert.Equal(t, 64, q.Height())
	assert.Equal(t, 32, QualityMedium.Height())
	assert.Equal(t, 8, QualityLow.Height())

	q, err = ParseQuality("")
	require.NoError(t, err)
	assert.Equal(t, QualityMedium, q)

	_, err = ParseQuality("ultra")
	assert.Error(t, err)
}
