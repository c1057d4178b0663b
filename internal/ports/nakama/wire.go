package nakama

import (
	"septica/internal/app"
	"septica/internal/domain"
)

// Wire messages exchanged with clients. Everything crosses the socket as
// JSON; domain.Card already carries its wire tags so cards pass through
// unchanged.

// StartGameRequest is sent by the lobby owner to begin a match.
type StartGameRequest struct {
	TargetScore int `json:"target_score,omitempty"`
}

// PlayCardRequest is sent by the player on turn.
type PlayCardRequest struct {
	Card domain.Card `json:"card"`
}

// MatchLabel is the JSON document Nakama indexes for match listing.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// PlayerState describes one occupied seat for lobby displays.
type PlayerState struct {
	UserID         string `json:"user_id"`
	Seat           int    `json:"seat"`
	IsOwner        bool   `json:"is_owner"`
	DisplayName    string `json:"display_name"`
	IsBot          bool   `json:"is_bot"`
	CardsRemaining int    `json:"cards_remaining"`
	Score          int    `json:"score"`
}

// MatchStateSnapshot is broadcast whenever seat occupancy changes.
type MatchStateSnapshot struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Tick      int64         `json:"tick"`
	Players   []PlayerState `json:"players"`
}

// GameStartedEvent announces a new match.
type GameStartedEvent struct {
	FirstTurnSeat int `json:"first_turn_seat"`
	TargetScore   int `json:"target_score"`
}

// HandDealtEvent carries one player's cards. Sent privately.
type HandDealtEvent struct {
	Hand []domain.Card `json:"hand"`
}

// CardPlayedEvent announces a play and whose turn is next.
type CardPlayedEvent struct {
	Seat         int         `json:"seat"`
	Card         domain.Card `json:"card"`
	NextTurnSeat int         `json:"next_turn_seat"`
}

// TrickWonEvent announces a resolved trick and the running scores.
type TrickWonEvent struct {
	WinnerSeat int            `json:"winner_seat"`
	Cards      []domain.Card  `json:"cards"`
	Points     int            `json:"points"`
	Scores     map[string]int `json:"scores"`
}

// GameEndedEvent carries the final result. An empty winner means a tie.
type GameEndedEvent struct {
	WinnerID        string         `json:"winner_id"`
	WinnerSeat      int            `json:"winner_seat"`
	FinalScores     map[string]int `json:"final_scores"`
	TotalTricks     int            `json:"total_tricks"`
	DurationSeconds int            `json:"duration_seconds"`
}

// GameErrorEvent reports a rejected action to the sender only.
type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eventOpCode maps an app event kind to its wire op code.
func eventOpCode(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventCardPlayed:
		return OpCardPlayed, true
	case app.EventTrickWon:
		return OpTrickWon, true
	case app.EventGameEnded:
		return OpGameEnded, true
	default:
		return 0, false
	}
}
