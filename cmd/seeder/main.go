package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/volley-tournament/internal/config"
	"github.com/mauv0809/volley-tournament/internal/database"
	"github.com/mauv0809/volley-tournament/internal/metrics"
	"github.com/mauv0809/volley-tournament/internal/model"
	"github.com/mauv0809/volley-tournament/internal/pubsub"
	"github.com/mauv0809/volley-tournament/internal/store"
	"github.com/mauv0809/volley-tournament/internal/tournament"
	"github.com/spf13/cobra"
)

var teamNames = []string{
	"Dinamo", "Rapid", "Steaua", "Ștefan cel Mare", "Zimbrii", "Aurora",
	"Carpați", "Delfinii", "Vulturii", "Lupii", "Arcașii", "Bucegi",
	"Olimpia", "Marea Neagră", "Someș", "Tisa",
}

var (
	numTeams   int
	numPlayed  int
	format     int
	seedRandom int64
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed the database with demo teams, a schedule and played matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed()
	},
}

func init() {
	rootCmd.Flags().IntVar(&numTeams, "teams", 8, "Number of teams to create")
	rootCmd.Flags().IntVar(&numPlayed, "played", 5, "Number of matches to play with random rallies")
	rootCmd.Flags().IntVar(&format, "format", model.FormatBestOf3, "Match format, 3 or 5")
	rootCmd.Flags().Int64Var(&seedRandom, "seed", time.Now().UnixNano(), "Random seed for simulated rallies")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seed() error {
	log.Info("Starting database seeder...")
	if numTeams < 2 || numTeams > len(teamNames) {
		return fmt.Errorf("--teams must be between 2 and %d", len(teamNames))
	}
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.", "db", cfg.DBName)

	svc := tournament.NewService(store.New(db), metrics.NewService(), pubsub.NewNoop(),
		tournament.WithLocale(cfg.Locale),
		tournament.WithCounters(metrics.New(db)),
	)
	seeder := tournament.AdminCaller("seeder")

	teamIDs := make([]string, 0, numTeams)
	for _, name := range teamNames[:numTeams] {
		team, err := svc.AddTeam(seeder, name)
		if err != nil {
			return fmt.Errorf("failed to add team %s: %w", name, err)
		}
		teamIDs = append(teamIDs, team.ID)
	}
	log.Info("Created teams", "count", len(teamIDs))

	result, err := svc.GenerateSchedule(seeder, teamIDs, format)
	if err != nil {
		return fmt.Errorf("failed to generate schedule: %w", err)
	}
	log.Info("Generated schedule", "matches", len(result.Matches), "rest_satisfied", result.ConstraintSatisfied)

	rng := rand.New(rand.NewSource(seedRandom))
	startTime := time.Now()
	rallies := 0
	for _, match := range result.Matches[:min(numPlayed, len(result.Matches))] {
		n, err := playMatch(svc, seeder, match.ID, rng)
		if err != nil {
			return fmt.Errorf("failed to play match %d: %w", match.Order, err)
		}
		rallies += n
		log.Info("Played match", "order", match.Order, "home", match.Team1Name, "away", match.Team2Name, "rallies", n)
	}

	log.Info("Seeding finished.", "rallies", rallies, "duration", time.Since(startTime))
	return nil
}

// playMatch records random rallies until the match is decided. The home
// side wins a rally a little more often to avoid endless deuces.
func playMatch(svc *tournament.Service, caller tournament.Caller, matchID string, rng *rand.Rand) (int, error) {
	for rallies := 1; ; rallies++ {
		scorer := string(model.SideTeam2)
		if rng.Float64() < 0.55 {
			scorer = string(model.SideTeam1)
		}
		res, err := svc.RecordPoint(caller, matchID, scorer)
		if err != nil {
			return rallies, err
		}
		if res.MatchCompleted {
			return rallies, nil
		}
	}
}
