package physics

import (
	"math"
	"sort"

	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// Параметры сетки статических тел
const (
	gridCellSize    float32 = 2
	maxCellsPerBody         = 64 // Тела крупнее (пол, стены, потолок) проверяются всегда
)

type cellKey [3]int32

// staticGrid - равномерная сетка статических тел. Кубы поверхности лежат на целочисленной
// решётке, поэтому каждое тело попадает в одну-две ячейки.
type staticGrid struct {
	cells map[cellKey][]gridEntry
	large []gridEntry
	count int
}

// gridEntry - тело и его AABB с учетом зазора касания
type gridEntry struct {
	body   *Body
	bounds AABB
}

func newStaticGrid(static []*Body) *staticGrid {
	g := &staticGrid{cells: make(map[cellKey][]gridEntry), count: len(static)}
	for _, b := range static {
		e := gridEntry{body: b, bounds: expand(shapeBounds(b), contactSkin)}
		lo, hi := cellRange(e.bounds)
		if cellSpan(lo, hi) > maxCellsPerBody {
			g.large = append(g.large, e)
			continue
		}
		for x := lo[0]; x <= hi[0]; x++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for z := lo[2]; z <= hi[2]; z++ {
					k := cellKey{x, y, z}
					g.cells[k] = append(g.cells[k], e)
				}
			}
		}
	}
	return g
}

// query возвращает статические тела, чьи AABB пересекают box, по возрастанию ID
func (g *staticGrid) query(box AABB) []*Body {
	seen := make(map[entity.ID]struct{})
	out := make([]*Body, 0, 8)
	for _, e := range g.large {
		if CheckBoxCollision(box, e.bounds) {
			seen[e.body.ID] = struct{}{}
			out = append(out, e.body)
		}
	}

	lo, hi := cellRange(box)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, e := range g.cells[cellKey{x, y, z}] {
					if _, dup := seen[e.body.ID]; dup {
						continue
					}
					seen[e.body.ID] = struct{}{}
					if CheckBoxCollision(box, e.bounds) {
						out = append(out, e.body)
					}
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func expand(b AABB, margin float32) AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

func cellRange(b AABB) (lo, hi cellKey) {
	for i := 0; i < 3; i++ {
		lo[i] = cellCoord(b.Min[i])
		hi[i] = cellCoord(b.Max[i])
	}
	return lo, hi
}

func cellCoord(v float32) int32 {
	c := math.Floor(float64(v / gridCellSize))
	return int32(max(math.MinInt32/2, min(c, math.MaxInt32/2)))
}

func cellSpan(lo, hi cellKey) int64 {
	n := int64(1)
	for i := 0; i < 3; i++ {
		n *= int64(hi[i]-lo[i]) + 1
		if n > maxCellsPerBody {
			return n
		}
	}
	return n
}
