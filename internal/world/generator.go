package world

import (
	"math/rand"
	"time"

	"github.com/annel0/sky-quest/internal/util"
)

// Константы генерации
const (
	NoiseThreshold = 0.2  // Ячейка твёрдая, если шум строго больше порога
	NoiseScale     = 10.0 // Делитель координат перед выборкой шума
	MinSeed        = 1
	MaxSeed        = 100
)

// Generator строит воксельное поле из трёхмерного шума Перлина
type Generator struct {
	rng       *rand.Rand
	newNoise  util.NoiseFactory
	fixedSeed int64
	lastSeed  int64
}

// GeneratorOption настраивает генератор
type GeneratorOption func(*Generator)

// WithRand задаёт источник случайности для выбора сида
func WithRand(rng *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.rng = rng }
}

// WithNoiseFactory подменяет источник шума
func WithNoiseFactory(f util.NoiseFactory) GeneratorOption {
	return func(g *Generator) { g.newNoise = f }
}

// WithSeed фиксирует сид; 0 означает случайный сид при каждой генерации
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) { g.fixedSeed = seed }
}

// NewGenerator создаёт новый генератор мира
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		newNoise: util.NewPerlin3D,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// Generate строит поле width × height × depth.
// Для каждой генерации выбирается новый сид из [1, 100], если сид не зафиксирован.
func (g *Generator) Generate(width, height, depth int) *VoxelField {
	seed := g.fixedSeed
	if seed == 0 {
		seed = MinSeed + g.rng.Int63n(MaxSeed-MinSeed+1)
	}
	g.lastSeed = seed

	noise := g.newNoise(seed)

	// Центрируем координаты, чтобы рельеф был симметричен относительно середины мира
	halfW := float64(width) / 2.0
	halfH := float64(height) / 2.0
	halfD := float64(depth) / 2.0

	return BuildVoxelField(width, height, depth, func(x, y, z int) bool {
		value := noise.Noise3D(
			(float64(x)-halfW)/NoiseScale,
			(float64(y)-halfH)/NoiseScale,
			(float64(z)-halfD)/NoiseScale,
		)
		return value > NoiseThreshold
	})
}

// LastSeed возвращает сид последней генерации
func (g *Generator) LastSeed() int64 {
	return g.lastSeed
}
