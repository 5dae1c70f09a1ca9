package sync

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/metrics"
	"matchsync/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Store is the persistence surface the syncer writes through.
// *repository.Database satisfies it via the Syncer constructor in
// cmd/worker; tests substitute an in-memory fake.
type Store interface {
	UpsertLeague(ctx context.Context, league *models.League) error
	UpsertTeam(ctx context.Context, team *models.Team) error
	UpsertFixtures(ctx context.Context, fixtures []*models.Fixture) (int, error)
	UpsertPlayer(ctx context.Context, player *models.Player) error
	UpsertStanding(ctx context.Context, standing *models.Standing) error
	UpsertStatistics(ctx context.Context, stats []*models.FixtureStatistic) (int, error)
}

// Syncer upserts provider payloads into the store, resolving entity
// dependencies so fixture rows never reference a missing team or league.
type Syncer struct {
	store     Store
	batchSize int
}

// NewSyncer creates a syncer writing fixture rows in batches of batchSize
func NewSyncer(store Store, batchSize int) *Syncer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Syncer{store: store, batchSize: batchSize}
}

// SyncFixtures writes a batch of fixture payloads. The input is
// deduplicated by provider fixture id (overlapping provider responses
// repeat fixtures; the last occurrence wins), the league/team
// dependency set is deduplicated across the whole batch and upserted
// first, then fixture rows are written in fixed-size batches. A failure
// on one entity is logged and skipped; the batch continues.
// Returns the number of fixture rows written.
func (s *Syncer) SyncFixtures(ctx context.Context, inputs []models.FixtureInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	// Dedupe fixtures by provider id, last occurrence wins
	byID := make(map[int64]*models.FixtureInput, len(inputs))
	order := make([]int64, 0, len(inputs))
	for i := range inputs {
		input := &inputs[i]
		if !input.Valid() {
			log.Warn().
				Int64("fixture_id", input.Fixture.ID).
				Msg("Skipping fixture payload with missing ids")
			metrics.RowsSkippedTotal.WithLabelValues("fixture", "invalid").Inc()
			continue
		}
		if _, seen := byID[input.Fixture.ID]; !seen {
			order = append(order, input.Fixture.ID)
		}
		byID[input.Fixture.ID] = input
	}

	// Collect the distinct league/team dependency set
	leagues := make(map[int64]*models.League)
	teams := make(map[int64]*models.Team)
	for _, id := range order {
		input := byID[id]
		if _, ok := leagues[input.League.ID]; !ok {
			leagues[input.League.ID] = input.League.ToLeague()
		}
		if _, ok := teams[input.Teams.Home.ID]; !ok {
			teams[input.Teams.Home.ID] = input.Teams.Home.ToTeam()
		}
		if _, ok := teams[input.Teams.Away.ID]; !ok {
			teams[input.Teams.Away.ID] = input.Teams.Away.ToTeam()
		}
	}

	// Upsert dependencies before any fixture row references them.
	// A failed dependency is logged; its fixtures will fail their own
	// upsert and be skipped there.
	for _, league := range leagues {
		if err := s.store.UpsertLeague(ctx, league); err != nil {
			log.Error().Err(err).Int64("league_id", league.LeagueID).Msg("Failed to upsert league")
			metrics.RowsSkippedTotal.WithLabelValues("league", "upsert_error").Inc()
			continue
		}
		metrics.RowsUpsertedTotal.WithLabelValues("league").Inc()
	}
	for _, team := range teams {
		if err := s.store.UpsertTeam(ctx, team); err != nil {
			log.Error().Err(err).Int64("team_id", team.TeamID).Msg("Failed to upsert team")
			metrics.RowsSkippedTotal.WithLabelValues("team", "upsert_error").Inc()
			continue
		}
		metrics.RowsUpsertedTotal.WithLabelValues("team").Inc()
	}

	// Write fixture rows in fixed-size batches
	rows := make([]*models.Fixture, 0, len(order))
	for _, id := range order {
		rows = append(rows, byID[id].ToFixture())
	}

	written := 0
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		n, err := s.store.UpsertFixtures(ctx, rows[start:end])
		written += n
		if err != nil {
			return written, fmt.Errorf("fixture batch write aborted: %w", err)
		}
	}

	metrics.RowsUpsertedTotal.WithLabelValues("fixture").Add(float64(written))
	if skipped := len(rows) - written; skipped > 0 {
		metrics.RowsSkippedTotal.WithLabelValues("fixture", "upsert_error").Add(float64(skipped))
	}

	log.Debug().
		Int("input", len(inputs)).
		Int("deduped", len(rows)).
		Int("written", written).
		Msg("Fixture sync complete")

	return written, nil
}

// SyncTeams writes full team payloads from the teams endpoint
func (s *Syncer) SyncTeams(ctx context.Context, inputs []models.TeamInput) (int, error) {
	written := 0
	for i := range inputs {
		input := &inputs[i]
		if input.Team.ID <= 0 {
			log.Warn().Str("name", input.Team.Name).Msg("Skipping team payload with missing id")
			metrics.RowsSkippedTotal.WithLabelValues("team", "invalid").Inc()
			continue
		}
		if err := s.store.UpsertTeam(ctx, input.ToTeam()); err != nil {
			log.Error().Err(err).Int64("team_id", input.Team.ID).Msg("Failed to upsert team")
			metrics.RowsSkippedTotal.WithLabelValues("team", "upsert_error").Inc()
			continue
		}
		written++
	}
	metrics.RowsUpsertedTotal.WithLabelValues("team").Add(float64(written))
	return written, nil
}

// SyncStandings writes one league season's table, ensuring the league
// and each referenced team exist first
func (s *Syncer) SyncStandings(ctx context.Context, inputs []models.StandingsInput) (int, error) {
	written := 0
	for i := range inputs {
		input := &inputs[i]
		if input.League.ID <= 0 {
			log.Warn().Msg("Skipping standings payload with missing league id")
			metrics.RowsSkippedTotal.WithLabelValues("standing", "invalid").Inc()
			continue
		}

		league := &models.League{LeagueID: input.League.ID, Name: input.League.Name}
		if err := s.store.UpsertLeague(ctx, league); err != nil {
			log.Error().Err(err).Int64("league_id", league.LeagueID).Msg("Failed to upsert league for standings")
			continue
		}

		for _, group := range input.League.Standings {
			for j := range group {
				row := &group[j]
				if row.Team.ID <= 0 {
					metrics.RowsSkippedTotal.WithLabelValues("standing", "invalid").Inc()
					continue
				}
				if err := s.store.UpsertTeam(ctx, row.Team.ToTeam()); err != nil {
					log.Error().Err(err).Int64("team_id", row.Team.ID).Msg("Failed to upsert team for standings")
					metrics.RowsSkippedTotal.WithLabelValues("standing", "upsert_error").Inc()
					continue
				}
				if err := s.store.UpsertStanding(ctx, row.ToStanding(input.League.ID, input.League.Season)); err != nil {
					log.Error().Err(err).
						Int64("team_id", row.Team.ID).
						Int64("league_id", input.League.ID).
						Msg("Failed to upsert standing")
					metrics.RowsSkippedTotal.WithLabelValues("standing", "upsert_error").Inc()
					continue
				}
				written++
			}
		}
	}
	metrics.RowsUpsertedTotal.WithLabelValues("standing").Add(float64(written))
	return written, nil
}

// SyncPlayers writes one team season's squad
func (s *Syncer) SyncPlayers(ctx context.Context, teamID int64, season int, inputs []models.PlayerInput) (int, error) {
	written := 0
	for i := range inputs {
		input := &inputs[i]
		if input.Player.ID <= 0 {
			log.Warn().Str("name", input.Player.Name).Msg("Skipping player payload with missing id")
			metrics.RowsSkippedTotal.WithLabelValues("player", "invalid").Inc()
			continue
		}
		if err := s.store.UpsertPlayer(ctx, input.ToPlayer(teamID, season)); err != nil {
			log.Error().Err(err).Int64("player_id", input.Player.ID).Msg("Failed to upsert player")
			metrics.RowsSkippedTotal.WithLabelValues("player", "upsert_error").Inc()
			continue
		}
		written++
	}
	metrics.RowsUpsertedTotal.WithLabelValues("player").Add(float64(written))
	return written, nil
}

// SyncStatistics writes one fixture's per-team statistic lines
func (s *Syncer) SyncStatistics(ctx context.Context, fixtureID int64, inputs []models.FixtureStatisticsInput) (int, error) {
	var rows []*models.FixtureStatistic
	for i := range inputs {
		rows = append(rows, inputs[i].ToStatistics(fixtureID)...)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	written, err := s.store.UpsertStatistics(ctx, rows)
	metrics.RowsUpsertedTotal.WithLabelValues("statistic").Add(float64(written))
	if err != nil {
		return written, fmt.Errorf("statistics write aborted: %w", err)
	}
	return written, nil
}
