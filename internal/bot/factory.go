package bot

import (
	"fmt"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return &SmartBot{AcceptScore: 3, RaiseScore: 6}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// NewAgent builds the agent for a pooled bot identity.
func NewAgent(identity BotIdentity) (*Agent, error) {
	brain, err := NewBrain(LevelFromDifficulty(identity.Difficulty))
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	return &Agent{ID: identity.UserID, Name: name, Strategy: brain}, nil
}
