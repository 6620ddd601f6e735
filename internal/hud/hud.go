package hud

import (
	"fmt"
	"math"

	"github.com/annel0/sky-quest/internal/game"
)

// Snapshot - данные для оверлея, только для чтения
type Snapshot struct {
	Wins      int     `json:"wins"`
	Collected int     `json:"collected"`
	Elapsed   float32 `json:"elapsed"`
	FPS       float64 `json:"fps"`
	FrameTime float64 `json:"frame_time_ms"`
	CPU       float64 `json:"cpu_usage"`
	Mem       float64 `json:"mem_usage"`
}

// Build собирает снимок HUD из снимка игры и диагностики. diag может быть nil.
func Build(s *game.Snapshot, diag *Diagnostics) Snapshot {
	var out Snapshot
	if s != nil {
		out.Wins = s.Session.Wins
		out.Collected = s.Session.Collected
		out.Elapsed = s.Elapsed
	}
	if diag != nil {
		out.FPS, out.FrameTime, out.CPU, out.Mem = diag.Values()
	}
	return out
}

// Text возвращает текст оверлея
func (s Snapshot) Text() string {
	return fmt.Sprintf("%.1f fps, %.3f ms/frame\ncpu_usage %d%%\nmem_usage %d%%\nElapsed Time: %.2f\n%d Wins\nCollected %d/%d",
		s.FPS, s.FrameTime, int(math.Round(s.CPU)), int(math.Round(s.Mem)), s.Elapsed, s.Wins, s.Collected, game.PickupsToWin)
}
