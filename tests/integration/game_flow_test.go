package integration

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"septica/internal/app"
	"septica/internal/bot"
	"septica/internal/domain"
)

// driveMatch plays a full game between the given agents and returns the
// result plus every card that crossed the table, in play order.
func driveMatch(t *testing.T, tiers []domain.Difficulty, seed int64) (domain.GameResult, []domain.Card) {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	players := make([]*domain.Player, len(tiers))
	agents := make(map[string]*bot.Agent, len(tiers))
	for i, tier := range tiers {
		id := fmt.Sprintf("agent-%d", i)
		players[i] = &domain.Player{ID: id, Name: id, Kind: domain.KindAutomated, Difficulty: tier}
		agent, err := bot.NewAgent(id, id, tier, rand.New(rand.NewSource(rng.Int63())))
		require.NoError(t, err)
		agents[id] = agent
	}

	session, _, err := app.NewSession(app.NewService(rng), players, app.DefaultTargetScore)
	require.NoError(t, err)
	defer session.Close()

	var played []domain.Card
	for turn := 0; turn < 4*domain.DeckSize; turn++ {
		if session.IsComplete() {
			break
		}
		current, ok := session.CurrentPlayer()
		require.True(t, ok, "match neither complete nor playable")

		snap := session.SnapshotFor(current.ID)
		valid := session.ValidMovesForCurrentPlayer()
		require.NotEmpty(t, valid, "player on turn must have a legal move")

		card, err := agents[current.ID].Decide(snap, valid)
		require.NoError(t, err)
		require.NotNil(t, card)
		require.True(t, domain.HandContains(valid, *card), "agent decision must be legal")

		require.NoError(t, session.PlayCard(current.ID, *card))
		played = append(played, *card)
	}

	result, ok := session.Result()
	require.True(t, ok, "match must terminate within the deck bound")
	return result, played
}

func TestFullMatch_TerminatesAndConservesPoints(t *testing.T) {
	tiers := [][]domain.Difficulty{
		{domain.DifficultyEasy, domain.DifficultyExpert},
		{domain.DifficultyMedium, domain.DifficultyHard, domain.DifficultyEasy},
		{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard, domain.DifficultyExpert},
	}

	for _, lineup := range tiers {
		lineup := lineup
		t.Run(fmt.Sprintf("%dplayers", len(lineup)), func(t *testing.T) {
			for seed := int64(1); seed <= 10; seed++ {
				result, played := driveMatch(t, lineup, seed)

				require.Len(t, played, domain.DeckSize, "every card must be played exactly once")
				seen := make(map[domain.Card]bool, domain.DeckSize)
				for _, c := range played {
					require.False(t, seen[c], "card %v played twice", c)
					seen[c] = true
				}

				total := 0
				for _, score := range result.FinalScores {
					total += score
				}
				require.Equal(t, 8, total, "point cards total eight per deck")
				require.Len(t, result.FinalScores, len(lineup))

				if result.WinnerID != "" {
					best := result.FinalScores[result.WinnerID]
					for id, score := range result.FinalScores {
						require.LessOrEqual(t, score, best, "winner %s outscored by %s", result.WinnerID, id)
					}
				}
			}
		})
	}
}

func TestFullMatch_ResultStable(t *testing.T) {
	a, _ := driveMatch(t, []domain.Difficulty{domain.DifficultyHard, domain.DifficultyHard}, 99)
	b, _ := driveMatch(t, []domain.Difficulty{domain.DifficultyHard, domain.DifficultyHard}, 99)

	require.Equal(t, a.WinnerID, b.WinnerID, "same seeds must replay identically")
	require.Equal(t, a.FinalScores, b.FinalScores)
	require.Equal(t, a.TotalTricks, b.TotalTricks)
}
