package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"septica/internal/app"
	"septica/internal/bot"
	"septica/internal/domain"
)

type simConfig struct {
	Games       int
	Tiers       []string
	TargetScore int
	Seed        int64
	Verbose     bool
}

func loadConfig() simConfig {
	viper.SetDefault("games", 100)
	viper.SetDefault("tiers", "easy,medium,hard,expert")
	viper.SetDefault("target_score", 11)
	viper.SetDefault("seed", 0)
	viper.SetDefault("verbose", false)

	viper.SetEnvPrefix("septica_sim")
	viper.AutomaticEnv()

	viper.SetConfigName("sim_config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Missing config file is fine, env and defaults cover everything.
	_ = viper.ReadInConfig()

	return simConfig{
		Games:       viper.GetInt("games"),
		Tiers:       strings.Split(viper.GetString("tiers"), ","),
		TargetScore: viper.GetInt("target_score"),
		Seed:        viper.GetInt64("seed"),
		Verbose:     viper.GetBool("verbose"),
	}
}

func newLogger(verbose bool) *clog.Logger {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "septica-sim",
	})
	if verbose {
		logger.SetLevel(clog.DebugLevel)
	}

	styles := clog.DefaultStyles()
	styles.Levels[clog.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#1B5E20")).
		Foreground(lipgloss.Color("#E8F5E9")).Bold(true)
	styles.Levels[clog.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#B71C1C")).
		Foreground(lipgloss.Color("#FFEBEE")).Bold(true)
	logger.SetStyles(styles)

	return logger
}

type seatStats struct {
	Tier   domain.Difficulty
	Wins   int
	Ties   int
	Points int
}

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg.Verbose)

	if len(cfg.Tiers) < app.MinPlayers || len(cfg.Tiers) > app.MaxPlayers {
		logger.Fatal("tier list must name 2 to 4 seats", "tiers", cfg.Tiers)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	agents := make([]*bot.Agent, len(cfg.Tiers))
	stats := make([]seatStats, len(cfg.Tiers))
	for i, tier := range cfg.Tiers {
		level := domain.Difficulty(strings.TrimSpace(tier))
		id := fmt.Sprintf("sim-%s-%d", level, i)
		agent, err := bot.NewAgent(id, fmt.Sprintf("Seat %d (%s)", i, level), level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			logger.Fatal("cannot build agent", "tier", tier, "err", err)
		}
		agents[i] = agent
		stats[i] = seatStats{Tier: level}
	}

	logger.Info("starting tournament", "games", cfg.Games, "tiers", strings.Join(cfg.Tiers, ","), "target", cfg.TargetScore, "seed", seed)

	start := time.Now()
	for g := 0; g < cfg.Games; g++ {
		matchID := uuid.NewString()
		result, err := runMatch(agents, cfg.TargetScore, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			logger.Error("match failed", "match", matchID, "err", err)
			continue
		}

		for i, agent := range agents {
			stats[i].Points += result.FinalScores[agent.ID]
			if result.WinnerID == agent.ID {
				stats[i].Wins++
			} else if result.WinnerID == "" {
				stats[i].Ties++
			}
		}

		logger.Debug("match finished", "match", matchID, "winner", result.WinnerID, "tricks", result.TotalTricks, "scores", result.FinalScores)
	}

	logger.Info("tournament finished", "games", cfg.Games, "elapsed", time.Since(start).Round(time.Millisecond))
	for i, s := range stats {
		logger.Info("seat summary",
			"seat", i,
			"tier", s.Tier,
			"wins", s.Wins,
			"ties", s.Ties,
			"win_rate", fmt.Sprintf("%.1f%%", 100*float64(s.Wins)/float64(cfg.Games)),
			"avg_points", fmt.Sprintf("%.2f", float64(s.Points)/float64(cfg.Games)),
		)
	}
}

// runMatch plays one full game between the agents and returns its result.
// Agents decide without the thinking delay; the simulator paces nothing.
func runMatch(agents []*bot.Agent, targetScore int, rng *rand.Rand) (domain.GameResult, error) {
	players := make([]*domain.Player, len(agents))
	for i, a := range agents {
		players[i] = &domain.Player{
			ID:         a.ID,
			Name:       a.Name,
			Kind:       domain.KindAutomated,
			Difficulty: a.Level,
		}
	}

	session, _, err := app.NewSession(app.NewService(rng), players, targetScore)
	if err != nil {
		return domain.GameResult{}, err
	}
	defer session.Close()

	byID := make(map[string]*bot.Agent, len(agents))
	for _, a := range agents {
		byID[a.ID] = a
	}

	// A 32-card deck bounds a match well under this.
	for turn := 0; turn < 4*domain.DeckSize; turn++ {
		if session.IsComplete() {
			break
		}
		current, ok := session.CurrentPlayer()
		if !ok {
			break
		}

		agent := byID[current.ID]
		snap := session.SnapshotFor(current.ID)
		valid := session.ValidMovesForCurrentPlayer()
		card, err := agent.Decide(snap, valid)
		if err != nil || card == nil {
			return domain.GameResult{}, fmt.Errorf("agent %s produced no move: %w", current.ID, err)
		}

		if err := session.PlayCard(current.ID, *card); err != nil {
			return domain.GameResult{}, fmt.Errorf("agent %s played an illegal card %v: %w", current.ID, *card, err)
		}
	}

	result, ok := session.Result()
	if !ok {
		return domain.GameResult{}, fmt.Errorf("match did not terminate")
	}
	return result, nil
}
