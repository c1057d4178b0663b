package bot

import (
	"fmt"

	"septica/internal/domain"
)

// NewBrain creates the strategy for the given difficulty tier.
func NewBrain(level domain.Difficulty) (Brain, error) {
	switch level {
	case domain.DifficultyEasy:
		return &EasyBot{}, nil
	case domain.DifficultyMedium:
		return &MediumBot{}, nil
	case domain.DifficultyHard:
		return &HardBot{}, nil
	case domain.DifficultyExpert:
		return &ExpertBot{Depth: ProfileFor(level).LookAheadDepth}, nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty: %q", level)
	}
}
