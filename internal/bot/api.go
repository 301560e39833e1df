package bot

import "truco/internal/domain"

// MoveKind is the kind of action a bot takes.
type MoveKind int

const (
	MovePlay MoveKind = iota
	MoveCallTruco
	MoveRespond
)

// Move represents the decision made by the AI.
type Move struct {
	Kind      MoveKind
	CardIndex int
	Hidden    bool
	Response  domain.Response
}

// Brain is the interface that all bot strategies must implement. Decide
// returns ok=false when the seat has nothing to do in view.
type Brain interface {
	Decide(view domain.View) (move Move, ok bool)
}

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelGood BotLevel = iota
	BotLevelSmart
)

// LevelFromDifficulty maps an identity difficulty to a level.
func LevelFromDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "hard", "medium":
		return BotLevelSmart
	default:
		return BotLevelGood
	}
}
