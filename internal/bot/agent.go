package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"septica/internal/domain"
)

// Agent is one autonomous Septica player: a strategy plus the difficulty
// profile that paces and perturbs it. Each agent carries its own rng, so
// agents deciding for different matches never contend on shared state.
type Agent struct {
	ID      string
	Name    string
	Level   domain.Difficulty
	Profile DifficultyProfile

	strategy Brain

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAgent builds an agent for the given tier with its default profile.
// A nil rng falls back to a time-seeded source.
func NewAgent(id, name string, level domain.Difficulty, rng *rand.Rand) (*Agent, error) {
	return NewAgentWithProfile(id, name, level, ProfileFor(level), rng)
}

// NewAgentWithProfile builds an agent with an explicit profile override,
// used when configuration retunes a tier.
func NewAgentWithProfile(id, name string, level domain.Difficulty, profile DifficultyProfile, rng *rand.Rand) (*Agent, error) {
	strategy, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Level:    level,
		Profile:  profile,
		strategy: strategy,
		rng:      rng,
	}, nil
}

// ChooseCard picks a card for the snapshot after deliberating for at least
// the profile's thinking time. It returns nil immediately when valid is
// empty, and ctx.Err() when cancelled mid-deliberation -- since nothing has
// been applied to the match, cancellation leaves no partial state behind.
func (a *Agent) ChooseCard(ctx context.Context, snap domain.Snapshot, valid []domain.Card) (*domain.Card, error) {
	if len(valid) == 0 {
		return nil, nil
	}

	timer := time.NewTimer(a.Profile.ThinkingTime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return a.Decide(snap, valid)
}

// Decide picks a card without the deliberation delay, for callers that pace
// turns themselves (e.g. a tick-driven match loop). With probability equal
// to the profile's accuracy it returns the strategy's best move; otherwise
// it picks uniformly among the legal cards. Either way the result is always
// a member of valid.
func (a *Agent) Decide(snap domain.Snapshot, valid []domain.Card) (*domain.Card, error) {
	if len(valid) == 0 {
		return nil, nil
	}

	a.mu.Lock()
	roll := a.rng.Float64()
	fallback := valid[a.rng.Intn(len(valid))]
	a.mu.Unlock()

	if roll < a.Profile.Accuracy {
		card, err := a.strategy.CalculateMove(snap, valid)
		if err == nil && domain.HandContains(valid, card) {
			return &card, nil
		}
	}
	return &fallback, nil
}
