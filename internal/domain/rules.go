package domain

// CanBeat reports whether the attacking card takes over the trick from the
// target card. tableCards is the number of cards on the table counting the
// attacking card itself at the moment it lands.
//
// Septica beating is asymmetric: a seven cuts anything, a card of the same
// rank as the target always cuts, and an eight cuts only when it is exactly
// the third card on the table. Plain higher rank does not cut.
func CanBeat(attacking, target Card, tableCards int) bool {
	if attacking.Rank == RankSeven {
		return true
	}
	if attacking.Rank == target.Rank {
		return true
	}
	if attacking.Rank == RankEight && tableCards == 3 {
		return true
	}
	return false
}

// ValidMoves returns the subset of hand that is legal to play against the
// target card. A nil target means the player leads the trick and every card
// is legal. When no card in hand can beat the target the whole hand is
// returned: a player who cannot cut must still play a card.
func ValidMoves(hand []Card, target *Card, tableCards int) []Card {
	if target == nil {
		return append([]Card(nil), hand...)
	}
	var beating []Card
	for _, c := range hand {
		if CanBeat(c, *target, tableCards) {
			beating = append(beating, c)
		}
	}
	if len(beating) == 0 {
		return append([]Card(nil), hand...)
	}
	return beating
}

// TrickWinner returns the index into table of the card that holds the trick.
// The first card starts as the winner and every later card replaces it when
// it legally beats the current winner, using the table size at the moment
// that card was played for the eight's timing condition.
func TrickWinner(table []Card) int {
	if len(table) == 0 {
		return 0
	}
	winner := 0
	for i := 1; i < len(table); i++ {
		if CanBeat(table[i], table[winner], i+1) {
			winner = i
		}
	}
	return winner
}

// CalculatePoints sums the point value of the given cards: one point per ten
// or ace, zero for everything else.
func CalculatePoints(cards []Card) int {
	points := 0
	for _, c := range cards {
		if c.IsPointCard() {
			points++
		}
	}
	return points
}
