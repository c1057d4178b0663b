package domain

// OpponentView is the public information one player holds about another.
type OpponentView struct {
	ID       string
	Name     string
	HandSize int
	Score    int
}

// Snapshot is an immutable view of a match taken for one player, typically
// handed to a decision engine. It carries only information that player is
// entitled to see: their own hand, the open table, resolved tricks, and
// public counters.
type Snapshot struct {
	PlayerID    string
	Hand        []Card
	Table       []Card
	Seen        []Card // cards from resolved tricks, in play order
	Opponents   []OpponentView
	Scores      map[string]int
	DeckCount   int
	TargetScore int
	Players     int
}

// Leading reports whether the snapshot owner opens the trick.
func (s Snapshot) Leading() bool {
	return len(s.Table) == 0
}

// TableCount returns the table size a card played now would land on,
// counting the card itself. This is the count CanBeat expects.
func (s Snapshot) TableCount() int {
	return len(s.Table) + 1
}

// Target returns the card a play must beat: the one currently winning the
// trick. Nil when the snapshot owner leads.
func (s Snapshot) Target() *Card {
	if len(s.Table) == 0 {
		return nil
	}
	t := s.Table[TrickWinner(s.Table)]
	return &t
}

// PointsAtStake returns the points currently on the table.
func (s Snapshot) PointsAtStake() int {
	return CalculatePoints(s.Table)
}

// SnapshotFor builds a snapshot of the game from the given player's
// perspective. All slices and maps are fresh copies; the snapshot stays
// valid after the game mutates.
func SnapshotFor(g *Game, playerID string) Snapshot {
	snap := Snapshot{
		PlayerID:    playerID,
		Table:       append([]Card(nil), g.Table...),
		Seen:        g.SeenCards(),
		Scores:      make(map[string]int, len(g.Players)),
		DeckCount:   g.Deck.Count(),
		TargetScore: g.TargetScore,
		Players:     len(g.Players),
	}
	for _, p := range g.Players {
		snap.Scores[p.ID] = p.Score
		if p.ID == playerID {
			snap.Hand = append([]Card(nil), p.Hand...)
			continue
		}
		snap.Opponents = append(snap.Opponents, OpponentView{
			ID:       p.ID,
			Name:     p.Name,
			HandSize: len(p.Hand),
			Score:    p.Score,
		})
	}
	return snap
}
