package bot

import (
	"time"

	botinternal "septica/internal/bot/internal"
	"septica/internal/domain"
)

// DifficultyProfile describes how an automated player behaves: how often it
// takes the heuristically best move, how long it deliberates, and how deep
// its look-ahead reasoning goes. All three grow strictly across the tiers.
type DifficultyProfile struct {
	Accuracy       float64
	ThinkingTime   time.Duration
	LookAheadDepth int
}

var defaultProfiles = map[domain.Difficulty]DifficultyProfile{
	domain.DifficultyEasy:   {Accuracy: 0.40, ThinkingTime: 400 * time.Millisecond, LookAheadDepth: 0},
	domain.DifficultyMedium: {Accuracy: 0.65, ThinkingTime: 800 * time.Millisecond, LookAheadDepth: 1},
	domain.DifficultyHard:   {Accuracy: 0.85, ThinkingTime: 1200 * time.Millisecond, LookAheadDepth: 2},
	domain.DifficultyExpert: {Accuracy: 0.97, ThinkingTime: 1600 * time.Millisecond, LookAheadDepth: 3},
}

// ProfileFor returns the default profile for a tier. Unknown tiers fall back
// to medium.
func ProfileFor(level domain.Difficulty) DifficultyProfile {
	if p, ok := defaultProfiles[level]; ok {
		return p
	}
	return defaultProfiles[domain.DifficultyMedium]
}

// Weight tables per tier. Easy plays the bare ranking; medium starts
// protecting point cards; hard and expert add wild and eight conservation.
var (
	easyWeights = botinternal.Weights{
		DiscardRankWeight:  1.0,
		CapturePointWeight: 4.0,
		CaptureBonus:       2.0,
		WildCaptureBonus:   3.0,
		WildLeadPenalty:    3.0,
		WildDiscardPenalty: 2.0,
	}

	mediumWeights = botinternal.Weights{
		DiscardRankWeight:   1.0,
		CapturePointWeight:  4.0,
		CaptureBonus:        2.0,
		WildCaptureBonus:    3.0,
		WildLeadPenalty:     2.5,
		WildDiscardPenalty:  3.0,
		PointDiscardPenalty: 3.0,
	}

	hardWeights = botinternal.Weights{
		DiscardRankWeight:   1.0,
		CapturePointWeight:  4.0,
		CaptureBonus:        2.0,
		WildCaptureBonus:    3.0,
		WildLeadPenalty:     3.0,
		WildDiscardPenalty:  4.0,
		PointDiscardPenalty: 3.5,
		EightTimingBonus:    1.5,
		EightHoldPenalty:    1.5,
	}
)
