// Command manualfetch runs a one-off sync for a single league season:
// teams, fixtures, and standings, through the same client and sync path
// the worker uses. Useful for onboarding a new league without waiting
// for the nightly crons.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"matchsync/ingestion/internal/cache"
	"matchsync/ingestion/internal/client"
	"matchsync/ingestion/internal/config"
	"matchsync/ingestion/internal/quota"
	"matchsync/ingestion/internal/repository"
	syncer "matchsync/ingestion/internal/sync"

	"github.com/rs/zerolog/log"
)

func main() {
	leagueID := flag.Int64("league", 0, "provider league id to sync (required)")
	season := flag.Int("season", 0, "season year (defaults to SEASON_YEAR)")
	withPlayers := flag.Bool("players", false, "also sync squads, one provider call per team")
	flag.Parse()

	if *leagueID == 0 {
		log.Fatal().Msg("-league is required")
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	if *season == 0 {
		*season = cfg.SeasonYear
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// One-off runs share the daily ceiling with the worker in spirit
	// only; this process gets its own window, so keep runs small
	governor := quota.NewCounter("manualfetch", cfg.OutboundDailyCeiling)

	apiClient := client.NewClient(
		cfg.APIFootballBaseURL,
		cfg.APIFootballKey,
		cfg.APIFootballTimeout,
		governor,
		cache.NewMemoryCache(),
		client.TTLConfig{
			Live:      cfg.TTLLive,
			Fixtures:  cfg.TTLFixtures,
			Standings: cfg.TTLStandings,
			Teams:     cfg.TTLTeams,
			Players:   cfg.TTLPlayers,
		},
	)

	sync := syncer.NewSyncer(db, cfg.UpsertBatchSize)

	start := time.Now()
	log.Info().Int64("league_id", *leagueID).Int("season", *season).Msg("Starting manual league sync")

	teams, err := apiClient.FetchTeams(ctx, *leagueID, *season)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch teams")
	}
	teamsWritten, err := sync.SyncTeams(ctx, teams)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sync teams")
	}
	log.Info().Int("teams", teamsWritten).Msg("Teams synced")

	fixtures, err := apiClient.FetchUpcomingFixtures(ctx, *leagueID, *season, cfg.UpcomingPerLeague)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch fixtures")
	}
	fixturesWritten, err := sync.SyncFixtures(ctx, fixtures)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sync fixtures")
	}
	log.Info().Int("fixtures", fixturesWritten).Msg("Fixtures synced")

	standings, err := apiClient.FetchStandings(ctx, *leagueID, *season)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch standings")
	}
	standingsWritten, err := sync.SyncStandings(ctx, standings)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sync standings")
	}
	log.Info().Int("standings", standingsWritten).Msg("Standings synced")

	playersWritten := 0
	if *withPlayers {
		for i := range teams {
			teamID := teams[i].Team.ID
			players, err := apiClient.FetchPlayers(ctx, teamID, *season)
			if err != nil {
				log.Warn().Err(err).Int64("team_id", teamID).Msg("Failed to fetch players, skipping team")
				continue
			}
			n, err := sync.SyncPlayers(ctx, teamID, *season, players)
			playersWritten += n
			if err != nil {
				log.Warn().Err(err).Int64("team_id", teamID).Msg("Failed to sync players")
			}
		}
		log.Info().Int("players", playersWritten).Msg("Players synced")
	}

	usage := governor.Usage()
	log.Info().
		Int("teams", teamsWritten).
		Int("fixtures", fixturesWritten).
		Int("standings", standingsWritten).
		Int("players", playersWritten).
		Int("upstream_calls", usage.Count).
		Dur("duration", time.Since(start)).
		Msg("Manual league sync complete")
}
