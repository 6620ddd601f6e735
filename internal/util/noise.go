package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина по умолчанию
const (
	DefaultAlpha   = 2.0 // Сглаживание шума
	DefaultBeta    = 2.0 // Частота шума
	DefaultOctaves = 1   // Одна октава: значение совпадает с классическим шумом Перлина
)

// Noise3D источник трехмерного шума. *perlin.Perlin удовлетворяет интерфейсу напрямую,
// тесты подставляют детерминированные заглушки.
type Noise3D interface {
	Noise3D(x, y, z float64) float64
}

// NoiseFactory создает источник шума для указанного сида
type NoiseFactory func(seed int64) Noise3D

// NewPerlin3D создает генератор шума Перлина с параметрами по умолчанию.
// Значения лежат примерно в диапазоне [-1, 1].
func NewPerlin3D(seed int64) Noise3D {
	return perlin.NewPerlin(DefaultAlpha, DefaultBeta, DefaultOctaves, seed)
}

// NewPerlinFactory возвращает фабрику с заданным числом октав
func NewPerlinFactory(octaves int32) NoiseFactory {
	if octaves <= 0 {
		octaves = DefaultOctaves
	}
	return func(seed int64) Noise3D {
		return perlin.NewPerlin(DefaultAlpha, DefaultBeta, octaves, seed)
	}
}
