package game

import (
	"github.com/annel0/sky-quest/internal/world/entity"
)

// WorldInfo - сводка о текущем мире
type WorldInfo struct {
	Seed          int64          `json:"seed"`
	Quality       string         `json:"quality"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Depth         int            `json:"depth"`
	SolidCount    int            `json:"solid_count"`
	Surface       int            `json:"surface"`
	Columns       int            `json:"columns"`
	Pickups       int            `json:"pickups"` // Осталось на поле
	Hazards       int            `json:"hazards"` // Осталось на поле
	Entities      int            `json:"entities"`
	Categories    map[string]int `json:"categories"`
	Regenerations int            `json:"regenerations"`
}

// Snapshot - неизменяемый снимок состояния после кадра.
// Публикуется через atomic.Pointer и читается из других горутин.
type Snapshot struct {
	Frame       uint64       `json:"frame"`
	State       string       `json:"state"`
	Session     SessionState `json:"session"`
	Jump        JumpState    `json:"jump"`
	Paused      bool         `json:"paused"`
	Elapsed     float32      `json:"elapsed"`
	FrameTime   float32      `json:"frame_time"`
	Fov         float32      `json:"fov"`
	HitReady    bool         `json:"hit_ready"`
	AvatarAlive bool         `json:"avatar_alive"`
	Position    [3]float32   `json:"position"`
	World       WorldInfo    `json:"world"`
}

// Snapshot возвращает последний опубликованный снимок. Безопасно для чтения из любой горутины.
func (g *Game) Snapshot() *Snapshot {
	return g.snapshot.Load()
}

// RoundElapsed возвращает время текущего раунда
func (g *Game) RoundElapsed() float32 {
	if timer, ok := g.entities.Get(g.roundTimer); ok {
		return timer.Elapsed
	}
	return 0
}

func (g *Game) publishSnapshot() {
	s := &Snapshot{
		Frame:     g.frame,
		State:     g.state.String(),
		Session:   g.session,
		Jump:      g.jump,
		Paused:    g.pause.Paused,
		Elapsed:   g.RoundElapsed(),
		FrameTime: g.lastFrameDelta,
		Fov:       FieldOfView(g.fov),
		HitReady:  g.hit.Finished(),
		World:     g.worldInfo(),
	}
	if g.avatar != 0 {
		if pos, _, ok := g.physics.Transform(g.avatar); ok {
			s.AvatarAlive = true
			s.Position = [3]float32{pos.X(), pos.Y(), pos.Z()}
		}
	}
	g.snapshot.Store(s)
}

func (g *Game) worldInfo() WorldInfo {
	info := WorldInfo{
		Quality:       g.quality.String(),
		Entities:      g.entities.Count(),
		Regenerations: g.regenerations,
	}
	if cats, ok := g.entities.GetStats()["categories"].(map[string]int); ok {
		info.Categories = cats
	}
	info.Pickups = info.Categories[entity.CategoryPickup.String()]
	info.Hazards = info.Categories[entity.CategoryHazard.String()]

	if l := g.layout; l != nil {
		info.Seed = l.Seed
		info.Width, info.Height, info.Depth = l.Width, l.Height, l.Depth
		info.SolidCount = l.SolidCount
		info.Surface = len(l.Surface)
		info.Columns = len(l.Columns)
	}
	return info
}
