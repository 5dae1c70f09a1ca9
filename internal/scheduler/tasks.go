package scheduler

import (
	"context"
	"errors"

	"matchsync/ingestion/internal/client"
	"matchsync/ingestion/internal/config"
	"matchsync/ingestion/internal/quota"
	syncer "matchsync/ingestion/internal/sync"

	"github.com/rs/zerolog/log"
)

// BuildTasks wires the standard refresh tasks: live fixtures and their
// statistics on short tickers, upcoming fixtures hourly, team rosters
// and standings as nightly cron jobs.
func BuildTasks(cfg *config.Config, c *client.Client, s *syncer.Syncer, governor *quota.Counter) []Task {
	return []Task{
		{
			Name:     "live_fixtures",
			Interval: cfg.LiveFixturesInterval,
			Run:      metered(governor, liveFixturesTask(c, s)),
		},
		{
			Name:     "live_statistics",
			Interval: cfg.LiveStatsInterval,
			Run:      metered(governor, liveStatisticsTask(c, s)),
		},
		{
			Name:     "upcoming_fixtures",
			Interval: cfg.UpcomingFixturesInterval,
			Run:      metered(governor, upcomingFixturesTask(cfg, c, s)),
		},
		{
			Name:     "team_seasons",
			CronSpec: cfg.TeamSeasonsCron,
			Run:      metered(governor, teamSeasonsTask(cfg, c, s)),
		},
		{
			Name:     "standings",
			CronSpec: cfg.StandingsCron,
			Run:      metered(governor, standingsTask(cfg, c, s)),
		},
	}
}

// usageSource is the slice of quota.Counter that metered needs
type usageSource interface {
	Usage() quota.Usage
}

// metered fills in RunStats.UpstreamCalls from the governor's counter
// delta around the run, so paginated fetches are counted accurately.
// The delta is clamped at zero: a daily window reset mid-run would
// otherwise produce a negative count and corrupt the cumulative stats.
func metered(governor usageSource, run TaskFunc) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		before := governor.Usage().Count
		stats, err := run(ctx)
		if delta := governor.Usage().Count - before; delta > 0 {
			stats.UpstreamCalls = delta
		}
		return stats, err
	}
}

// liveFixturesTask refreshes every fixture currently in play
func liveFixturesTask(c *client.Client, s *syncer.Syncer) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		fixtures, err := c.FetchLiveFixtures(ctx)
		if err != nil {
			return RunStats{}, err
		}

		written, err := s.SyncFixtures(ctx, fixtures)
		return RunStats{RowsWritten: written}, err
	}
}

// liveStatisticsTask refreshes per-team statistics for fixtures in
// play. Statistics are only fetched for fixtures the live refresh has
// already seen, one provider call per live fixture.
func liveStatisticsTask(c *client.Client, s *syncer.Syncer) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		fixtures, err := c.FetchLiveFixtures(ctx)
		if err != nil {
			return RunStats{}, err
		}

		written := 0
		for i := range fixtures {
			fixtureID := fixtures[i].Fixture.ID

			stats, err := c.FetchFixtureStatistics(ctx, fixtureID)
			if err != nil {
				// Quota exhaustion ends the run; anything else skips
				// this fixture and moves on
				if isQuotaErr(err) {
					return RunStats{RowsWritten: written}, err
				}
				log.Warn().Err(err).Int64("fixture_id", fixtureID).Msg("Failed to fetch fixture statistics")
				continue
			}

			n, err := s.SyncStatistics(ctx, fixtureID, stats)
			written += n
			if err != nil {
				log.Warn().Err(err).Int64("fixture_id", fixtureID).Msg("Failed to sync fixture statistics")
			}
		}

		return RunStats{RowsWritten: written}, nil
	}
}

// upcomingFixturesTask refreshes the schedule for each tracked league
func upcomingFixturesTask(cfg *config.Config, c *client.Client, s *syncer.Syncer) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		written := 0
		for _, leagueID := range cfg.TrackedLeagues {
			fixtures, err := c.FetchUpcomingFixtures(ctx, leagueID, cfg.SeasonYear, cfg.UpcomingPerLeague)
			if err != nil {
				if isQuotaErr(err) {
					return RunStats{RowsWritten: written}, err
				}
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch upcoming fixtures")
				continue
			}

			n, err := s.SyncFixtures(ctx, fixtures)
			written += n
			if err != nil {
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to sync upcoming fixtures")
			}
		}
		return RunStats{RowsWritten: written}, nil
	}
}

// teamSeasonsTask refreshes full team records and squads for each
// tracked league. Runs nightly; squads are a player call per team, so
// this is the most call-hungry task and lives behind the off-peak cron.
func teamSeasonsTask(cfg *config.Config, c *client.Client, s *syncer.Syncer) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		written := 0
		for _, leagueID := range cfg.TrackedLeagues {
			teams, err := c.FetchTeams(ctx, leagueID, cfg.SeasonYear)
			if err != nil {
				if isQuotaErr(err) {
					return RunStats{RowsWritten: written}, err
				}
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch teams")
				continue
			}

			n, err := s.SyncTeams(ctx, teams)
			written += n
			if err != nil {
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to sync teams")
				continue
			}

			for i := range teams {
				teamID := teams[i].Team.ID
				players, err := c.FetchPlayers(ctx, teamID, cfg.SeasonYear)
				if err != nil {
					if isQuotaErr(err) {
						return RunStats{RowsWritten: written}, err
					}
					log.Warn().Err(err).Int64("team_id", teamID).Msg("Failed to fetch players")
					continue
				}

				pn, err := s.SyncPlayers(ctx, teamID, cfg.SeasonYear, players)
				written += pn
				if err != nil {
					log.Warn().Err(err).Int64("team_id", teamID).Msg("Failed to sync players")
				}
			}
		}
		return RunStats{RowsWritten: written}, nil
	}
}

// standingsTask refreshes the league table for each tracked league
func standingsTask(cfg *config.Config, c *client.Client, s *syncer.Syncer) TaskFunc {
	return func(ctx context.Context) (RunStats, error) {
		written := 0
		for _, leagueID := range cfg.TrackedLeagues {
			standings, err := c.FetchStandings(ctx, leagueID, cfg.SeasonYear)
			if err != nil {
				if isQuotaErr(err) {
					return RunStats{RowsWritten: written}, err
				}
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch standings")
				continue
			}

			n, err := s.SyncStandings(ctx, standings)
			written += n
			if err != nil {
				log.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to sync standings")
			}
		}
		return RunStats{RowsWritten: written}, nil
	}
}

func isQuotaErr(err error) bool {
	return errors.Is(err, client.ErrQuotaExhausted)
}
