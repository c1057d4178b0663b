package app

import (
	"sync"

	"github.com/google/uuid"

	"septica/internal/domain"
)

// eventBuffer is the per-subscriber channel depth. A subscriber that stops
// draining loses events rather than stalling the match.
const eventBuffer = 64

// Session owns one live match. All mutation funnels through PlayCard under a
// single mutex, so concurrent callers are serialized and the turn, table and
// score invariants hold. Reads hand out copies; independent sessions share
// nothing mutable.
type Session struct {
	ID string

	mu     sync.Mutex
	svc    *Service
	game   *domain.Game
	subs   []chan Event
	closed bool
}

// NewSession starts a match for the given players and wraps it in a session.
func NewSession(svc *Service, players []*domain.Player, targetScore int) (*Session, []Event, error) {
	game, events, err := svc.StartMatch(players, targetScore)
	if err != nil {
		return nil, nil, err
	}
	return &Session{
		ID:   uuid.NewString(),
		svc:  svc,
		game: game,
	}, events, nil
}

// Subscribe returns a channel receiving every subsequent match event. The
// channel closes with the session.
func (s *Session) Subscribe() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, eventBuffer)
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Close tears the session down and closes subscriber channels. Pending AI
// deliberations for this match should be cancelled by their owner; a
// decision never applied via PlayCard leaves no partial mutation behind.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

// PlayCard validates and applies one play for the given player. A non-nil
// error is a typed, recoverable failure that left the match untouched.
func (s *Session) PlayCard(playerID string, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.svc.PlayCard(s.game, playerID, card)
	if err != nil {
		return err
	}
	s.publishLocked(events)
	return nil
}

// ValidMovesForCurrentPlayer returns the legal cards for the player on turn.
func (s *Session) ValidMovesForCurrentPlayer() []domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc.ValidMovesForCurrent(s.game)
}

// CurrentPlayer returns a copy of the player on turn, or false once the
// match has finished.
func (s *Session) CurrentPlayer() (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game.Phase != domain.PhasePlaying {
		return domain.Player{}, false
	}
	p := s.game.CurrentPlayer()
	cp := *p
	cp.Hand = append([]domain.Card(nil), p.Hand...)
	return cp, true
}

// TopTableCard returns the most recently played table card, or nil when the
// table is clear.
func (s *Session) TopTableCard() *domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.game.Table) == 0 {
		return nil
	}
	c := s.game.Table[len(s.game.Table)-1]
	return &c
}

// IsComplete reports whether the match reached its terminal state.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase == domain.PhaseFinished
}

// Result returns the match result once finished. The result is computed a
// single time; repeated queries return the identical value.
func (s *Session) Result() (domain.GameResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game.Result == nil {
		return domain.GameResult{}, false
	}
	return *s.game.Result, true
}

// SnapshotForCurrent captures an immutable view of the match for the player
// on turn, suitable for handing to a decision engine.
func (s *Session) SnapshotForCurrent() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game.Phase != domain.PhasePlaying {
		return domain.Snapshot{}, false
	}
	return domain.SnapshotFor(s.game, s.game.CurrentPlayer().ID), true
}

// SnapshotFor captures an immutable view for a specific player.
func (s *Session) SnapshotFor(playerID string) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SnapshotFor(s.game, playerID)
}

func (s *Session) publishLocked(events []Event) {
	for _, ch := range s.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default: // slow subscriber, drop
			}
		}
	}
}
