package game

import "github.com/annel0/sky-quest/internal/logging"

// SplashDuration - длительность заставки в секундах
const SplashDuration float32 = 2

// State представляет состояние конечного автомата сессии
type State interface {
	ID() GameState
	Enter(g *Game)
	Update(g *Game, dt float32, in Input) GameState
	Exit(g *Game)
}

// === Конкретные состояния ===

// splashState - заставка, через SplashDuration переходит в меню
type splashState struct {
	timer *Cooldown
}

func (s *splashState) ID() GameState { return StateSplash }

func (s *splashState) Enter(g *Game) {
	s.timer = NewCooldown(SplashDuration)
}

func (s *splashState) Update(g *Game, dt float32, in Input) GameState {
	if s.timer.Tick(dt) {
		return StateMenu
	}
	return StateSplash
}

func (s *splashState) Exit(g *Game) {}

// menuState ждёт команды StartNewGame или Resume
type menuState struct{}

func (menuState) ID() GameState                                  { return StateMenu }
func (menuState) Enter(g *Game)                                  {}
func (menuState) Update(g *Game, dt float32, in Input) GameState { return StateMenu }
func (menuState) Exit(g *Game)                                   {}

// pausedState - игра остановлена, мир сохраняется
type pausedState struct{}

func (pausedState) ID() GameState                                  { return StatePaused }
func (pausedState) Enter(g *Game)                                  { g.pause.Paused = true }
func (pausedState) Update(g *Game, dt float32, in Input) GameState { return StatePaused }
func (pausedState) Exit(g *Game)                                   {}

// newGameState выполняет жесткий сброс при входе и в следующем кадре запускает раунд
type newGameState struct{}

func (newGameState) ID() GameState { return StateNewGame }

func (newGameState) Enter(g *Game) {
	g.EnterNewGame()
}

func (newGameState) Update(g *Game, dt float32, in Input) GameState {
	return StateInGame
}

func (newGameState) Exit(g *Game) {}

// inGameState - основной игровой цикл
type inGameState struct{}

func (inGameState) ID() GameState { return StateInGame }

func (inGameState) Enter(g *Game) {
	g.spawnAvatar()
}

func (inGameState) Update(g *Game, dt float32, in Input) GameState {
	if in.Escape {
		g.pause.Paused = true
		logging.Info("⏸️ Escape: выход в меню")
		return StateMenu
	}
	g.tick(dt, in)
	return StateInGame
}

func (inGameState) Exit(g *Game) {
	g.despawnAvatar()
}

func defaultStates() map[GameState]State {
	states := []State{&splashState{}, menuState{}, pausedState{}, newGameState{}, inGameState{}}
	out := make(map[GameState]State, len(states))
	for _, s := range states {
		out[s.ID()] = s
	}
	return out
}
