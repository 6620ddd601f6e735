package game

import (
	"github.com/annel0/sky-quest/internal/audio"
	"github.com/annel0/sky-quest/internal/world/entity"
)

// PickupsToWin - сколько шаров нужно собрать для победы
const PickupsToWin = 5

// Registry - часть реестра сущностей, нужная резолверу
type Registry interface {
	CategoryOf(id entity.ID) entity.Category
	IsPendingDestroy(id entity.ID) bool
	RequestDestroy(id entity.ID) bool
}

// Outcome - что произошло за один шаг разрешения контактов
type Outcome struct {
	Collected []entity.ID // Подобранные шары
	Hazards   []entity.ID // Враги, которых коснулся игрок
	RoundWon  bool        // Собран последний шар
}

// Resolver интерпретирует контакты игрока по категориям партнёров
type Resolver struct {
	entities Registry
	audio    audio.Player
	volume   float64
}

// NewResolver создает резолвер. volume - множитель громкости 0..1.
func NewResolver(entities Registry, player audio.Player, volume float64) *Resolver {
	if player == nil {
		player = audio.NopPlayer{}
	}
	return &Resolver{entities: entities, audio: player, volume: volume}
}

// SetVolume меняет громкость сигналов
func (r *Resolver) SetVolume(volume float64) {
	r.volume = volume
}

// Resolve применяет контакты одного шага к счёту и прыжку.
// Касание врага в шаге всегда оставляет Collected = 0, независимо от порядка контактов.
func (r *Resolver) Resolve(s *SessionState, j *JumpState, contacts []entity.ID) Outcome {
	var out Outcome
	grounded := false

	for _, id := range contacts {
		switch r.entities.CategoryOf(id) {
		case entity.CategoryGround:
			grounded = true

		case entity.CategoryHazard:
			if len(out.Hazards) == 0 {
				r.audio.Play(audio.CueDeath, r.volume)
			}
			out.Hazards = append(out.Hazards, id)
			s.IsWon = true
			s.Collected = 0

		case entity.CategoryPickup:
			if r.entities.IsPendingDestroy(id) {
				continue
			}
			r.entities.RequestDestroy(id)
			s.Collected++
			r.audio.Play(audio.CueScore, r.volume)
			out.Collected = append(out.Collected, id)

			if s.Collected == PickupsToWin {
				s.IsWon = true
				s.Wins++
				s.Collected = 0
				out.RoundWon = true
			}
		}
	}

	if len(out.Hazards) > 0 {
		s.Collected = 0
	}
	j.Available = grounded
	return out
}
