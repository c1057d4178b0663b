package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"septica/internal/domain"
)

const (
	// HandSize is the number of cards dealt to each player per round.
	HandSize = 4
	// DefaultTargetScore ends the match once a player reaches it.
	DefaultTargetScore = 11

	// MinPlayers and MaxPlayers bound the seat count a match accepts.
	MinPlayers = 2
	MaxPlayers = 4
)

var (
	ErrTooFewPlayers     = errors.New("not enough players to start")
	ErrTooManyPlayers    = errors.New("too many players for one deck")
	ErrGameNotInProgress = errors.New("match not in playing phase")
	ErrUnknownPlayer     = errors.New("player not found")
	ErrNotPlayerTurn     = errors.New("not this player's turn")
	ErrCardNotInHand     = errors.New("card not in player's hand")
	ErrInvalidMove       = errors.New("invalid move")
)

// InvalidMoveError carries the subreason a legal-looking play was rejected.
// It unwraps to ErrInvalidMove.
type InvalidMoveError struct {
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move: %s", e.Reason)
}

func (e *InvalidMoveError) Unwrap() error { return ErrInvalidMove }

// Service contains Septica use-cases operating on match state. Methods
// mutate the supplied game in place and return the events the transition
// produced; every returned error leaves the game unchanged.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// StartMatch creates a match for the given players, shuffles a fresh deck
// and deals the opening hands.
func (s *Service) StartMatch(players []*domain.Player, targetScore int) (*domain.Game, []Event, error) {
	if len(players) < MinPlayers {
		return nil, nil, ErrTooFewPlayers
	}
	if len(players) > MaxPlayers {
		return nil, nil, ErrTooManyPlayers
	}
	if targetScore <= 0 {
		targetScore = DefaultTargetScore
	}

	for _, p := range players {
		p.Hand = nil
		p.Score = 0
	}

	game := &domain.Game{
		Players:     players,
		Deck:        domain.NewDeck(s.rng),
		TargetScore: targetScore,
		Phase:       domain.PhaseDealing,
		StartedAt:   time.Now(),
	}

	events := s.dealRound(game)
	game.Phase = domain.PhasePlaying

	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:         game.Phase,
			FirstPlayerID: game.CurrentPlayer().ID,
			TargetScore:   game.TargetScore,
		},
	})

	return game, events, nil
}

// ValidMovesForCurrent returns the cards the player on turn may legally
// play. The target to beat is the card currently winning the trick; a player
// with no cutting card may play anything.
func (s *Service) ValidMovesForCurrent(game *domain.Game) []domain.Card {
	if game.Phase != domain.PhasePlaying {
		return nil
	}
	p := game.CurrentPlayer()
	if p == nil {
		return nil
	}
	if len(game.Table) == 0 {
		return domain.ValidMoves(p.Hand, nil, 1)
	}
	target := game.Table[domain.TrickWinner(game.Table)]
	return domain.ValidMoves(p.Hand, &target, len(game.Table)+1)
}

// PlayCard applies one card play for the given player. Validation failures
// are typed and recoverable; none of them mutate the match.
func (s *Service) PlayCard(game *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	if game.Phase != domain.PhasePlaying {
		return nil, ErrGameNotInProgress
	}
	p := game.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if game.CurrentPlayer().ID != playerID {
		return nil, ErrNotPlayerTurn
	}
	if !domain.HandContains(p.Hand, card) {
		return nil, ErrCardNotInHand
	}
	if !domain.HandContains(s.ValidMovesForCurrent(game), card) {
		return nil, &InvalidMoveError{Reason: "a card able to cut the trick must be played"}
	}

	seat := game.SafeCurrentIndex()
	p.Hand, _ = domain.RemoveCard(p.Hand, card)
	game.Table = append(game.Table, card)
	game.TrickSeats = append(game.TrickSeats, seat)

	// Seats dealt out of the uneven last round sit the trick out, so the
	// trick closes once every seat still holding cards has played.
	var trickEvents []Event
	if len(game.Table) >= game.TrickParticipants() {
		trickEvents = s.resolveTrick(game)
	} else if next := game.NextHolder(seat + 1); next >= 0 {
		game.CurrentIndex = next
	}

	events := []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			PlayerID:     playerID,
			Card:         card,
			NextPlayerID: game.CurrentPlayer().ID,
		},
	}}

	return append(events, trickEvents...), nil
}

// resolveTrick settles a completed trick: picks the winner, awards table
// points, records history and hands the lead to the winner. It then redeals
// or finishes the match as the deck allows.
func (s *Service) resolveTrick(game *domain.Game) []Event {
	game.Phase = domain.PhaseTrickComplete

	winnerIdx := game.TrickSeats[domain.TrickWinner(game.Table)]
	winner := game.Players[winnerIdx]

	points := domain.CalculatePoints(game.Table)
	winner.Score += points

	trick := domain.CompletedTrick{
		Cards:    append([]domain.Card(nil), game.Table...),
		WinnerID: winner.ID,
	}
	game.Tricks = append(game.Tricks, trick)
	game.Table = nil
	game.TrickSeats = nil
	game.CurrentIndex = winnerIdx

	scores := make(map[string]int, len(game.Players))
	for _, p := range game.Players {
		scores[p.ID] = p.Score
	}

	events := []Event{{
		Kind: EventTrickWon,
		Payload: TrickWonPayload{
			WinnerID: winner.ID,
			Cards:    trick.Cards,
			Points:   points,
			Scores:   scores,
		},
	}}

	if winner.Score >= game.TargetScore {
		return append(events, s.finish(game)...)
	}

	if game.HandsEmpty() {
		if game.Deck.IsEmpty() {
			return append(events, s.finish(game)...)
		}
		events = append(events, s.dealRound(game)...)
	}

	// A winner whose hand came up empty cannot lead; pass the lead along to
	// the next seat still holding cards.
	if next := game.NextHolder(winnerIdx); next >= 0 {
		game.CurrentIndex = next
	}

	game.Phase = domain.PhasePlaying
	return events
}

// dealRound deals up to HandSize cards to every player, round-robin in seat
// order. A short deck is dealt out completely, leaving the last hands uneven,
// so every card reaches the table before the match ends.
func (s *Service) dealRound(game *domain.Game) []Event {
	total := HandSize * len(game.Players)
	if game.Deck.Count() < total {
		total = game.Deck.Count()
	}

	for i := 0; i < total; i++ {
		card, ok := game.Deck.Draw()
		if !ok {
			break
		}
		p := game.Players[i%len(game.Players)]
		p.Hand = append(p.Hand, card)
	}

	events := make([]Event, 0, len(game.Players))
	for _, p := range game.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				PlayerID: p.ID,
				Hand:     append([]domain.Card(nil), p.Hand...),
			},
			Recipients: []string{p.ID},
		})
	}
	return events
}

// finish moves the match to its terminal state and computes the result
// exactly once.
func (s *Service) finish(game *domain.Game) []Event {
	game.Phase = domain.PhaseFinished

	if game.Result == nil {
		scores := make(map[string]int, len(game.Players))
		best, runnerUp := -1, -1
		winnerID := ""
		for _, p := range game.Players {
			scores[p.ID] = p.Score
			switch {
			case p.Score > best:
				runnerUp = best
				best = p.Score
				winnerID = p.ID
			case p.Score > runnerUp:
				runnerUp = p.Score
			}
		}
		if best == runnerUp {
			winnerID = "" // tie
		}
		game.Result = &domain.GameResult{
			WinnerID:    winnerID,
			FinalScores: scores,
			TotalTricks: len(game.Tricks),
			Duration:    time.Since(game.StartedAt),
		}
	}

	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{Result: *game.Result},
	}}
}
