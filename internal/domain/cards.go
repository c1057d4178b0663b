package domain

import "fmt"

// Suit identifies one of the four suits in the Septica deck.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var suitSymbols = [...]string{"♣", "♦", "♥", "♠"}

func (s Suit) String() string {
	if s < Clubs || s > Spades {
		return "?"
	}
	return suitSymbols[s]
}

// Rank values for the 32-card deck. Septica plays 7 through Ace, Ace high.
const (
	RankSeven = 7
	RankEight = 8
	RankNine  = 9
	RankTen   = 10
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Card is a single playing card. Cards are compared by value; two cards are
// equal when suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// IsPointCard reports whether the card scores a point when its trick is won.
// Tens and aces are worth one point each.
func (c Card) IsPointCard() bool {
	return c.Rank == RankTen || c.Rank == RankAce
}

func (c Card) String() string {
	switch c.Rank {
	case RankJack:
		return "J" + c.Suit.String()
	case RankQueen:
		return "Q" + c.Suit.String()
	case RankKing:
		return "K" + c.Suit.String()
	case RankAce:
		return "A" + c.Suit.String()
	default:
		return fmt.Sprintf("%d%s", c.Rank, c.Suit.String())
	}
}

// AllCards returns the 32 distinct cards of the deck in a fixed order.
func AllCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for s := Clubs; s <= Spades; s++ {
		for r := RankSeven; r <= RankAce; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return cards
}

// CardIndex maps a card to a stable 0..31 index.
func CardIndex(c Card) int {
	return int(c.Suit)*8 + (c.Rank - RankSeven)
}
