package internal

import "septica/internal/domain"

// CardStatus represents what a bot knows about a specific card.
type CardStatus int

const (
	StatusUnknown CardStatus = iota // held by an opponent or still in the deck
	StatusMine                      // in the bot's own hand
	StatusSeen                      // on the table or buried in a resolved trick
)

// Memory is a bot's private card-counting view of one match, rebuilt per
// decision from the snapshot so nothing mutable is shared across matches.
type Memory struct {
	status [domain.DeckSize]CardStatus
}

// BuildMemory derives the card statuses visible to the snapshot owner.
func BuildMemory(snap domain.Snapshot) *Memory {
	m := &Memory{}
	for _, c := range snap.Hand {
		m.status[domain.CardIndex(c)] = StatusMine
	}
	for _, c := range snap.Seen {
		m.status[domain.CardIndex(c)] = StatusSeen
	}
	for _, c := range snap.Table {
		m.status[domain.CardIndex(c)] = StatusSeen
	}
	return m
}

// Status returns what the bot knows about the card.
func (m *Memory) Status(c domain.Card) CardStatus {
	return m.status[domain.CardIndex(c)]
}

// UnseenCount returns how many cards are neither held nor seen.
func (m *Memory) UnseenCount() int {
	count := 0
	for _, s := range m.status {
		if s == StatusUnknown {
			count++
		}
	}
	return count
}

// UnseenByRank returns how many cards of the given rank remain unaccounted
// for.
func (m *Memory) UnseenByRank(rank int) int {
	count := 0
	for _, c := range domain.AllCards() {
		if c.Rank == rank && m.Status(c) == StatusUnknown {
			count++
		}
	}
	return count
}

// UnseenBeaters counts the unaccounted cards that could beat the target at
// the given table size. This is the raw material for capture-risk reasoning:
// a capture is only safe when no unseen card can take the trick back.
func (m *Memory) UnseenBeaters(target domain.Card, tableCards int) int {
	count := 0
	for _, c := range domain.AllCards() {
		if m.Status(c) != StatusUnknown {
			continue
		}
		if domain.CanBeat(c, target, tableCards) {
			count++
		}
	}
	return count
}
