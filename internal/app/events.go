package app

import "septica/internal/domain"

// EventKind identifies emitted match events for transport dispatch.
type EventKind string

const (
	EventGameStarted EventKind = "game_started"
	EventHandDealt   EventKind = "hand_dealt"
	EventCardPlayed  EventKind = "card_played"
	EventTrickWon    EventKind = "trick_won"
	EventGameEnded   EventKind = "game_ended"
)

// Event is a match event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type GameStartedPayload struct {
	Phase         domain.Phase
	FirstPlayerID string
	TargetScore   int
}

type HandDealtPayload struct {
	PlayerID string
	Hand     []domain.Card
}

type CardPlayedPayload struct {
	PlayerID     string
	Card         domain.Card
	NextPlayerID string
}

type TrickWonPayload struct {
	WinnerID string
	Cards    []domain.Card
	Points   int
	Scores   map[string]int
}

type GameEndedPayload struct {
	Result domain.GameResult
}
