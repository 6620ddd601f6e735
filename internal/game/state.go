package game

import "fmt"

// GameState - состояние сессии
type GameState uint8

const (
	StateSplash GameState = iota
	StateMenu
	StateNewGame
	StateInGame
	StatePaused
)

func (s GameState) String() string {
	switch s {
	case StateSplash:
		return "splash"
	case StateMenu:
		return "menu"
	case StateNewGame:
		return "new_game"
	case StateInGame:
		return "in_game"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("state_%d", int(s))
	}
}

// SessionState - счёт текущей сессии.
// Меняется только резолвером столкновений и сбросами раунда.
type SessionState struct {
	IsWon     bool `json:"is_won"`
	Wins      int  `json:"wins"`
	Collected int  `json:"collected"`
}

// JumpDuration длительность прыжка в секундах
const JumpDuration float32 = 0.5

// JumpState - состояние прыжка игрока
type JumpState struct {
	Jumping   bool    `json:"jumping"`
	Elapsed   float32 `json:"elapsed"`
	Available bool    `json:"available"`
}

// NewJumpState возвращает состояние с полным запасом прыжка
func NewJumpState() JumpState {
	return JumpState{Elapsed: JumpDuration}
}

// Request начинает прыжок, если игрок стоит на земле
func (j *JumpState) Request() bool {
	if !j.Available {
		return false
	}
	j.Jumping = true
	return true
}

// Tick уменьшает оставшееся время прыжка
func (j *JumpState) Tick(dt float32) {
	if !j.Jumping {
		return
	}
	j.Available = false
	j.Elapsed -= dt
	if j.Elapsed < 0 {
		j.Jumping = false
		j.Elapsed = JumpDuration
	}
}

// Pause - флаг паузы, выставляемый клавишей Escape
type Pause struct {
	Paused bool `json:"paused"`
}

// Cooldown - одноразовый таймер
type Cooldown struct {
	duration float32
	elapsed  float32
}

// NewCooldown создает таймер на duration секунд
func NewCooldown(duration float32) *Cooldown {
	return &Cooldown{duration: duration}
}

// Tick продвигает таймер и возвращает true, если он истёк
func (c *Cooldown) Tick(dt float32) bool {
	c.elapsed = min(c.elapsed+dt, c.duration)
	return c.Finished()
}

// Finished сообщает, истёк ли таймер
func (c *Cooldown) Finished() bool {
	return c.elapsed >= c.duration
}

// Restart запускает таймер заново
func (c *Cooldown) Restart() {
	c.elapsed = 0
}

// Remaining возвращает оставшееся время
func (c *Cooldown) Remaining() float32 {
	return c.duration - c.elapsed
}
