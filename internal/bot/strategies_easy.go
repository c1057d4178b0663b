package bot

import (
	"septica/internal/bot/internal"
	"septica/internal/domain"
)

// EasyBot plays the bare shared ranking: grab a points trick with a seven if
// held, otherwise with any cutting card, otherwise shed the cheapest card.
// It does not protect point cards and it reasons zero tricks ahead.
type EasyBot struct{}

func (b *EasyBot) CalculateMove(snap domain.Snapshot, valid []domain.Card) (domain.Card, error) {
	if len(valid) == 0 {
		return domain.Card{}, ErrNoValidMoves
	}

	scored := internal.ScoreMoves(snap, valid, easyWeights)
	return internal.Best(scored), nil
}
