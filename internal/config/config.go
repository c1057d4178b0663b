package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DifficultyOverride retunes one bot tier from configuration.
type DifficultyOverride struct {
	Accuracy       *float64 `json:"accuracy,omitempty"`
	ThinkingTimeMs *int     `json:"thinking_time_ms,omitempty"`
	LookAheadDepth *int     `json:"look_ahead_depth,omitempty"`
}

type GameConfig struct {
	TargetScore         int `json:"target_score"`
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int                           `json:"bot_auto_fill_delay_seconds"`
	DefaultBotDifficulty    string                        `json:"default_bot_difficulty"`
	Difficulties            map[string]DifficultyOverride `json:"difficulties,omitempty"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetTargetScore returns the configured match target, or the standard 11.
func GetTargetScore() int {
	if cfg == nil || cfg.TargetScore <= 0 {
		return 11
	}
	return cfg.TargetScore
}

// GetTurnDuration returns how long a human player has to act.
func GetTurnDuration() time.Duration {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.TurnDurationSeconds) * time.Second
}

// GetBotAutoFillDelay returns how long a solo lobby waits before a bot joins.
func GetBotAutoFillDelay() time.Duration {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.BotAutoFillDelaySeconds) * time.Second
}

// GetDefaultBotDifficulty returns the tier a bot joins with when the match
// does not ask for one.
func GetDefaultBotDifficulty() string {
	if cfg == nil || cfg.DefaultBotDifficulty == "" {
		return "medium"
	}
	return cfg.DefaultBotDifficulty
}

// GetDifficultyOverride returns the configured retuning for a tier, if any.
func GetDifficultyOverride(tier string) (DifficultyOverride, bool) {
	if cfg == nil {
		return DifficultyOverride{}, false
	}
	o, ok := cfg.Difficulties[tier]
	return o, ok
}
