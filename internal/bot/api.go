package bot

import (
	"errors"

	"septica/internal/domain"
)

// ErrNoValidMoves is returned by a Brain asked to pick from an empty set.
// Agents short-circuit before this can happen.
var ErrNoValidMoves = errors.New("no valid moves to choose from")

// Brain is the interface all bot strategies implement. CalculateMove returns
// the strategy's best card from the legal set; it must never return a card
// outside valid. Implementations are stateless and safe for concurrent use
// across matches.
type Brain interface {
	CalculateMove(snap domain.Snapshot, valid []domain.Card) (domain.Card, error)
}
