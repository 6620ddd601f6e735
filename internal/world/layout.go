package world

import (
	"github.com/annel0/sky-quest/internal/vec"
	"github.com/annel0/sky-quest/internal/world/entity"
)

// Layout - результат одного прохода генерации. Само поле не сохраняется.
type Layout struct {
	Width      int
	Height     int
	Depth      int
	Seed       int64
	SolidCount int
	Surface    []vec.Vec3
	Columns    []vec.Vec3
	Batch      PlacementBatch
}

// Pipeline связывает генератор шума, извлечение поверхности и расстановку
type Pipeline struct {
	generator *Generator
	placer    *Placer
	width     int
	depth     int
}

// NewPipeline создаёт конвейер генерации для мира WorldWidth × WorldDepth
func NewPipeline(generator *Generator, placer *Placer) *Pipeline {
	return &Pipeline{
		generator: generator,
		placer:    placer,
		width:     WorldWidth,
		depth:     WorldDepth,
	}
}

// WithSize меняет горизонтальные размеры мира
func (p *Pipeline) WithSize(width, depth int) *Pipeline {
	p.width = width
	p.depth = depth
	return p
}

// Build генерирует поле, извлекает поверхность и колонки, расставляет объекты
func (p *Pipeline) Build(quality DisplayQuality) *Layout {
	field := p.generator.Generate(p.width, quality.Height(), p.depth)
	columns := SampleColumns(field)

	return &Layout{
		Width:      field.Width(),
		Height:     field.Height(),
		Depth:      field.Depth(),
		Seed:       p.generator.LastSeed(),
		SolidCount: field.SolidCount(),
		Surface:    ExtractSurface(field),
		Columns:    columns,
		Batch:      p.placer.Place(columns),
	}
}

// Descriptors возвращает все сущности раунда в порядке создания:
// кубы, шары, враги, таймер, стены, границы, свет.
func (l *Layout) Descriptors() []entity.Descriptor {
	offset := CenterOffset(l.Width, l.Depth)

	out := make([]entity.Descriptor, 0, len(l.Surface)+len(l.Batch.Pickups)+len(l.Batch.Hazards)+10)
	for _, p := range l.Surface {
		out = append(out, CubeDescriptor(ToWorld(p, offset)))
	}
	for _, p := range l.Batch.Pickups {
		out = append(out, PickupDescriptor(ToWorld(p, offset)))
	}
	for _, p := range l.Batch.Hazards {
		out = append(out, HazardDescriptor(ToWorld(p, offset)))
	}
	out = append(out, TimerDescriptor())
	out = append(out, WallDescriptors()...)
	out = append(out, BoundaryDescriptors()...)
	out = append(out, LightDescriptor())
	return out
}
