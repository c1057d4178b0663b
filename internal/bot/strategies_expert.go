package bot

import (
	"septica/internal/bot/internal"
	"septica/internal/domain"
)

// ExpertBot layers card counting over the hard game. It rebuilds a seen-card
// memory from every snapshot, discounts captures an unseen card could still
// take back, recognizes when a point-card lead has no live cutter left, and
// values captures that close the trick outright. Depth gates the layers so
// the profile's look-ahead setting has a concrete effect.
type ExpertBot struct {
	Depth int
}

func (b *ExpertBot) CalculateMove(snap domain.Snapshot, valid []domain.Card) (domain.Card, error) {
	if len(valid) == 0 {
		return domain.Card{}, ErrNoValidMoves
	}

	scored := internal.ScoreMoves(snap, valid, hardWeights)

	mem := internal.BuildMemory(snap)
	stake := snap.PointsAtStake()
	closing := snap.TableCount() >= snap.Players

	for i := range scored {
		m := &scored[i]

		if b.Depth >= 1 && m.Captures && !closing && stake > 0 && m.Card.Rank != domain.RankSeven {
			// A capture the opposition can answer is only as good as the
			// odds nobody holds a card that retakes the trick.
			unseen := mem.UnseenCount()
			if unseen > 0 {
				risk := float64(mem.UnseenBeaters(m.Card, snap.TableCount()+1)) / float64(unseen)
				m.Score -= 3.0 * risk * float64(stake)
			}
		}

		if b.Depth >= 2 && snap.Leading() && m.Card.IsPointCard() &&
			mem.UnseenByRank(domain.RankSeven) == 0 && mem.UnseenByRank(m.Card.Rank) == 0 {
			// No seven and no rank mate left in unknown hands: the point
			// card leads safely, so stop hoarding it.
			m.Score += hardWeights.PointDiscardPenalty + 1.0
		}

		if b.Depth >= 3 && m.Captures && closing && stake > 0 {
			// Closing the trick means the capture cannot be contested.
			m.Score += 2.0
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
