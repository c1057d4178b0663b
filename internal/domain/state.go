package domain

import "time"

// Phase represents the lifecycle stage of a Septica match.
type Phase string

const (
	// PhaseDealing is the initial state while hands are dealt.
	PhaseDealing Phase = "dealing"
	// PhasePlaying is the active state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseTrickComplete is the transient state while a trick is resolved.
	PhaseTrickComplete Phase = "trick_complete"
	// PhaseFinished is the terminal state after the match concludes.
	PhaseFinished Phase = "finished"
)

// PlayerKind distinguishes human seats from automated ones.
type PlayerKind int

const (
	KindHuman PlayerKind = iota
	KindAutomated
)

// Difficulty tags an automated player's decision profile.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Difficulties lists the canonical tiers in ascending strength order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}

// Player holds the match state for one participant. The hand is mutated only
// by the match state machine: removed on play, extended on deal.
type Player struct {
	ID         string
	Name       string
	Hand       []Card
	Score      int
	Kind       PlayerKind
	Difficulty Difficulty // set only for KindAutomated
}

// CompletedTrick records a resolved trick: the cards in play order and the
// player who took them. Entries are append-only and never mutated.
type CompletedTrick struct {
	Cards    []Card
	WinnerID string
}

// GameResult is produced exactly once when a match finishes.
type GameResult struct {
	WinnerID    string // empty on a tie
	FinalScores map[string]int
	TotalTricks int
	Duration    time.Duration
}

// Game is the authoritative state of a single Septica match. All mutation
// goes through the app service; packages reading it concurrently must hold
// the owning session's lock.
type Game struct {
	Players      []*Player
	Deck         *Deck
	Table        []Card
	TrickSeats   []int // seat that played each table card, parallel to Table
	Tricks       []CompletedTrick
	CurrentIndex int
	TargetScore  int
	Phase        Phase
	StartedAt    time.Time
	Result       *GameResult
}

// SafeCurrentIndex returns CurrentIndex clamped to a valid player index.
// An out-of-range value is an invariant breach from the calling layer; the
// state self-heals to index 0 instead of propagating a panic.
func (g *Game) SafeCurrentIndex() int {
	if g.CurrentIndex < 0 || g.CurrentIndex >= len(g.Players) {
		g.CurrentIndex = 0
	}
	return g.CurrentIndex
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	if len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.SafeCurrentIndex()]
}

// PlayerByID finds a player by id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayedThisTrick reports whether the seat already put a card on the table.
func (g *Game) PlayedThisTrick(seat int) bool {
	for _, s := range g.TrickSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// TrickParticipants counts the players taking part in the current trick:
// everyone still holding cards plus those who already played into it. The
// last deal of an uneven stock can leave some seats without cards; those
// seats sit the trick out.
func (g *Game) TrickParticipants() int {
	count := 0
	for i, p := range g.Players {
		if len(p.Hand) > 0 || g.PlayedThisTrick(i) {
			count++
		}
	}
	return count
}

// NextHolder returns the first seat at or after start, in turn order, that
// still holds cards. Returns -1 when every hand is empty.
func (g *Game) NextHolder(start int) int {
	n := len(g.Players)
	if n == 0 {
		return -1
	}
	for step := 0; step < n; step++ {
		j := ((start+step)%n + n) % n
		if len(g.Players[j].Hand) > 0 {
			return j
		}
	}
	return -1
}

// HandsEmpty reports whether every player has played out their hand.
func (g *Game) HandsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// SeenCards returns every card already collected into resolved tricks, in
// play order.
func (g *Game) SeenCards() []Card {
	var seen []Card
	for _, t := range g.Tricks {
		seen = append(seen, t.Cards...)
	}
	return seen
}

// HandContains reports whether the hand holds the exact card.
func HandContains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// RemoveCard returns a new hand with one occurrence of card removed. The
// second return is false when the card was not present, in which case the
// original hand is returned unchanged.
func RemoveCard(hand []Card, card Card) ([]Card, bool) {
	for i, c := range hand {
		if c == card {
			out := make([]Card, 0, len(hand)-1)
			out = append(out, hand[:i]...)
			out = append(out, hand[i+1:]...)
			return out, true
		}
	}
	return hand, false
}
