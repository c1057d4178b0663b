package internal

import "septica/internal/domain"

// Weights tune move scoring for one strategy tier.
type Weights struct {
	DiscardRankWeight   float64 // cost per rank unit of giving a card away
	CapturePointWeight  float64 // reward per point captured off the table
	CaptureBonus        float64 // flat reward for taking over a live trick
	WildCaptureBonus    float64 // extra for spending a seven on a points trick
	WildLeadPenalty     float64 // cost of opening a trick with a seven
	WildDiscardPenalty  float64 // cost of burning a seven outside a capture
	PointDiscardPenalty float64 // cost of throwing a ten or ace away
	EightTimingBonus    float64 // reward for an eight landing exactly third
	EightHoldPenalty    float64 // cost of wasting an eight off its timing
}

// ScoredMove pairs a candidate card with its computed score.
type ScoredMove struct {
	Card     domain.Card
	Score    float64
	Captures bool
}

func rankValue(c domain.Card) float64 {
	return float64(c.Rank - domain.RankSeven)
}

// ScoreMoves evaluates every candidate against the snapshot; higher is
// better. The ordering encodes the shared ranking: on a points trick a held
// seven outranks any other capture, captures outrank discards, and the
// cheapest non-wild card is the preferred discard. Leading with nothing at
// stake holds sevens back for a later, higher-stakes trick.
func ScoreMoves(snap domain.Snapshot, valid []domain.Card, w Weights) []ScoredMove {
	target := snap.Target()
	stake := snap.PointsAtStake()
	tableCount := snap.TableCount()

	scored := make([]ScoredMove, 0, len(valid))
	for _, c := range valid {
		score := -w.DiscardRankWeight * rankValue(c)

		captures := target != nil && domain.CanBeat(c, *target, tableCount)
		if captures && stake > 0 {
			score += w.CaptureBonus + w.CapturePointWeight*float64(stake)
			if c.Rank == domain.RankSeven {
				score += w.WildCaptureBonus
			}
			if c.Rank == domain.RankEight {
				score += w.EightTimingBonus
			}
		}

		if c.Rank == domain.RankSeven {
			if target == nil {
				score -= w.WildLeadPenalty
			} else if !captures || stake == 0 {
				score -= w.WildDiscardPenalty
			}
		}
		if c.Rank == domain.RankEight && !(captures && stake > 0) {
			score -= w.EightHoldPenalty
		}
		if c.IsPointCard() && !captures {
			score -= w.PointDiscardPenalty
		}

		scored = append(scored, ScoredMove{Card: c, Score: score, Captures: captures})
	}
	return scored
}

// Best returns the top-scoring card. Ties break toward the cheaper card,
// then the lower suit, so strategies stay deterministic.
func Best(scored []ScoredMove) domain.Card {
	best := scored[0]
	for _, m := range scored[1:] {
		if m.Score > best.Score {
			best = m
			continue
		}
		if m.Score == best.Score {
			if m.Card.Rank < best.Card.Rank ||
				(m.Card.Rank == best.Card.Rank && m.Card.Suit < best.Card.Suit) {
				best = m
			}
		}
	}
	return best.Card
}
