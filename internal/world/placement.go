package world

import (
	"math/rand"
	"time"

	"github.com/annel0/sky-quest/internal/vec"
)

// Параметры расстановки объектов
const (
	DefaultPickupCount = 5
	HazardRollRange    = 200 // Бросок Intn(200)
	HazardRollHits     = 2   // Враг появляется при броске < 2 (около 1%)
)

// PlacementBatch - результат расстановки
type PlacementBatch struct {
	Pickups          []vec.Vec3 // Первые min(N, len) позиций перемешанного списка
	HazardCandidates []vec.Vec3 // Остаток списка
	Hazards          []vec.Vec3 // Кандидаты, выигравшие бросок
}

// Placer расставляет синие шары и врагов по позициям колонок
type Placer struct {
	rng     *rand.Rand
	pickups int
}

// NewPlacer создаёт расстановщик. rng == nil - случайный источник по времени.
func NewPlacer(rng *rand.Rand, pickups int) *Placer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if pickups < 0 {
		pickups = 0
	}
	return &Placer{rng: rng, pickups: pickups}
}

// Place перемешивает копию columns (Фишер-Йетс), забирает первые позиции под шары
// и независимо разыгрывает врага для каждой оставшейся позиции.
func (p *Placer) Place(columns []vec.Vec3) PlacementBatch {
	shuffled := make([]vec.Vec3, len(columns))
	copy(shuffled, columns)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := min(p.pickups, len(shuffled))
	batch := PlacementBatch{
		Pickups:          shuffled[:n:n],
		HazardCandidates: shuffled[n:],
	}

	for _, pos := range batch.HazardCandidates {
		if p.rng.Intn(HazardRollRange) < HazardRollHits {
			batch.Hazards = append(batch.Hazards, pos)
		}
	}
	return batch
}
