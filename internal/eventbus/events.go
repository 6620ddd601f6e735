package eventbus

// Типы игровых событий
const (
	TypeStateChanged     = "StateChanged"
	TypeWorldRegenerated = "WorldRegenerated"
	TypePickupCollected  = "PickupCollected"
	TypeHazardHit        = "HazardHit"
	TypeRoundWon         = "RoundWon"
	TypeHazardPushed     = "HazardPushed"
)

// SourceGame - источник событий игрового цикла
const SourceGame = "game"

// StateChanged смена состояния сессии
type StateChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WorldRegenerated мир построен заново
type WorldRegenerated struct {
	Reason     string `json:"reason"` // "new_game" или "round_won"
	Seed       int64  `json:"seed"`
	Quality    string `json:"quality"`
	SolidCount int    `json:"solid_count"`
	Surface    int    `json:"surface"`
	Columns    int    `json:"columns"`
	Pickups    int    `json:"pickups"`
	Hazards    int    `json:"hazards"`
}

// PickupCollected игрок подобрал шар
type PickupCollected struct {
	EntityID  uint64 `json:"entity_id"`
	Collected int    `json:"collected"`
}

// HazardHit игрок коснулся врага
type HazardHit struct {
	EntityID uint64 `json:"entity_id"`
}

// RoundWon собраны все шары
type RoundWon struct {
	Wins int `json:"wins"`
}

// HazardPushed враг отброшен лучом
type HazardPushed struct {
	EntityID uint64  `json:"entity_id"`
	Distance float32 `json:"distance"`
}
