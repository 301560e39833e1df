package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"truco/internal/domain"
)

// GameConfig holds the table rules and bot timings shared by every room.
type GameConfig struct {
	TargetScore int `json:"target_score"`
	// AutoDeal deals the next hand as soon as a round is scored. When false the
	// room waits in round_over for a new-round request.
	AutoDeal             bool `json:"auto_deal"`
	NextHandDelaySeconds int  `json:"next_hand_delay_seconds"`
	BotsEnabled          bool `json:"bots_enabled"`
	BotMinDelaySeconds   int  `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds   int  `json:"bot_max_delay_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before filling a solo human lobby with bots.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		TargetScore:             domain.DefaultTargetScore,
		AutoDeal:                true,
		NextHandDelaySeconds:    3,
		BotsEnabled:             false,
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotAutoFillDelaySeconds: 5,
	}
}

// Rules returns the domain rules for a new room.
func (c GameConfig) Rules() domain.Rules {
	return domain.Rules{TargetScore: c.TargetScore, AutoDeal: c.AutoDeal}
}

// Parse decodes a JSON config on top of the defaults and normalizes it.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.normalize()
	return c, nil
}

// ApplyEnv overrides fields from a key/value environment. Keys carry the given
// prefix, e.g. "truco_" + "target_score". Malformed values are ignored.
func (c *GameConfig) ApplyEnv(env map[string]string, prefix string) {
	intVar := func(key string, dst *int) {
		if val, ok := env[prefix+key]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				*dst = i
			}
		}
	}
	boolVar := func(key string, dst *bool) {
		if val, ok := env[prefix+key]; ok {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	intVar("target_score", &c.TargetScore)
	boolVar("auto_deal", &c.AutoDeal)
	intVar("next_hand_delay_sec", &c.NextHandDelaySeconds)
	boolVar("bots_enabled", &c.BotsEnabled)
	intVar("bot_min_delay_sec", &c.BotMinDelaySeconds)
	intVar("bot_max_delay_sec", &c.BotMaxDelaySeconds)
	intVar("bot_auto_fill_delay_sec", &c.BotAutoFillDelaySeconds)
	c.normalize()
}

func (c *GameConfig) normalize() {
	d := Default()
	if c.TargetScore <= 0 {
		c.TargetScore = d.TargetScore
	}
	if c.NextHandDelaySeconds < 0 {
		c.NextHandDelaySeconds = 0
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = d.BotMinDelaySeconds
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = c.BotMinDelaySeconds
	}
	if c.BotAutoFillDelaySeconds <= 0 {
		c.BotAutoFillDelaySeconds = d.BotAutoFillDelaySeconds
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults if none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
