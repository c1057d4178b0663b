package bot

import (
	"septica/internal/bot/internal"
	"septica/internal/domain"
)

// MediumBot keeps the shared ranking but stops bleeding points: tens and
// aces are held back from lost tricks, and a capture that reaches the target
// score is always taken.
type MediumBot struct{}

func (b *MediumBot) CalculateMove(snap domain.Snapshot, valid []domain.Card) (domain.Card, error) {
	if len(valid) == 0 {
		return domain.Card{}, ErrNoValidMoves
	}

	scored := internal.ScoreMoves(snap, valid, mediumWeights)

	stake := snap.PointsAtStake()
	if stake > 0 && snap.Scores[snap.PlayerID]+stake >= snap.TargetScore {
		// Match point on the table: any capture wins outright.
		for i := range scored {
			if scored[i].Captures {
				scored[i].Score += 5.0
			}
		}
	}

	return internal.Best(scored), nil
}
