package world

import (
	"fmt"
	"strings"
)

// Размеры мира по горизонтали
const (
	WorldWidth = 64
	WorldDepth = 64
)

// DisplayQuality определяет высоту генерируемого мира
type DisplayQuality int

const (
	QualityLow DisplayQuality = iota
	QualityMedium
	QualityHigh
)

// Height возвращает высоту поля для уровня качества
func (q DisplayQuality) Height() int {
	switch q {
	case QualityLow:
		return 8
	case QualityHigh:
		return 64
	default:
		return 32
	}
}

// String возвращает строковое представление уровня качества
func (q DisplayQuality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseQuality разбирает строковое имя уровня качества
func ParseQuality(s string) (DisplayQuality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return QualityLow, nil
	case "", "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	default:
		return QualityMedium, fmt.Errorf("неизвестный уровень качества %q", s)
	}
}
