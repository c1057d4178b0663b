package domain

import (
	"math/rand"
	"time"
)

// DeckSize is the number of cards in a full Septica deck.
const DeckSize = 32

// Deck holds the undealt cards of a match. It is owned by the match state;
// cards only ever leave via Draw.
type Deck struct {
	cards []Card
}

// NewDeck builds a freshly shuffled 32-card deck. Pass a seeded rng to get a
// reproducible permutation; a nil rng falls back to a time-seeded source.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cards := AllCards()
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return &Deck{cards: cards}
}

// NewDeckFromCards builds a deck with the exact given order. Used for
// deterministic replays and tests.
func NewDeckFromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Draw removes and returns the top card. The second return is false when the
// deck is exhausted, which is a normal end-of-deal condition rather than an
// error.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Count returns the number of undealt cards.
func (d *Deck) Count() int {
	return len(d.cards)
}

// IsEmpty reports whether every card has been drawn.
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}
