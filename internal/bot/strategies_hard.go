package bot

import (
	"septica/internal/bot/internal"
	"septica/internal/domain"
)

// hardThreatMargin is how close an opponent may get to the target score
// before HardBot switches to denying points.
const hardThreatMargin = 2

// HardBot adds timing awareness on top of the medium game: eights are saved
// for the third-card window, sevens are hoarded harder, and when an opponent
// is within striking distance of the target every point on the table is
// contested.
type HardBot struct{}

func (b *HardBot) CalculateMove(snap domain.Snapshot, valid []domain.Card) (domain.Card, error) {
	if len(valid) == 0 {
		return domain.Card{}, ErrNoValidMoves
	}

	scored := internal.ScoreMoves(snap, valid, hardWeights)

	stake := snap.PointsAtStake()
	if stake > 0 && b.opponentThreatens(snap) {
		for i := range scored {
			if scored[i].Captures {
				scored[i].Score += 3.0
			}
		}
	}
	if stake > 0 && snap.Scores[snap.PlayerID]+stake >= snap.TargetScore {
		for i := range scored {
			if scored[i].Captures {
				scored[i].Score += 5.0
			}
		}
	}

	return internal.Best(scored), nil
}

func (b *HardBot) opponentThreatens(snap domain.Snapshot) bool {
	for _, o := range snap.Opponents {
		if snap.TargetScore-o.Score <= hardThreatMargin {
			return true
		}
	}
	return false
}
