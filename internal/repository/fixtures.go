package repository

import (
	"context"
	"fmt"
	"time"

	"matchsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// FixtureRepository handles fixture database operations
type FixtureRepository struct {
	db *Database
}

const upsertFixtureQuery = `
	INSERT INTO fixtures (
		fixture_id, league_id, season, round, home_team_id, away_team_id,
		kickoff_at, status, elapsed, venue, referee,
		home_goals, away_goals, home_goals_half, away_goals_half,
		home_goals_extra, away_goals_extra, home_penalty_goals, away_penalty_goals
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (fixture_id) DO UPDATE SET
		league_id = EXCLUDED.league_id,
		season = EXCLUDED.season,
		round = COALESCE(EXCLUDED.round, fixtures.round),
		home_team_id = EXCLUDED.home_team_id,
		away_team_id = EXCLUDED.away_team_id,
		kickoff_at = EXCLUDED.kickoff_at,
		status = EXCLUDED.status,
		elapsed = COALESCE(EXCLUDED.elapsed, fixtures.elapsed),
		venue = COALESCE(EXCLUDED.venue, fixtures.venue),
		referee = COALESCE(EXCLUDED.referee, fixtures.referee),
		home_goals = COALESCE(EXCLUDED.home_goals, fixtures.home_goals),
		away_goals = COALESCE(EXCLUDED.away_goals, fixtures.away_goals),
		home_goals_half = COALESCE(EXCLUDED.home_goals_half, fixtures.home_goals_half),
		away_goals_half = COALESCE(EXCLUDED.away_goals_half, fixtures.away_goals_half),
		home_goals_extra = COALESCE(EXCLUDED.home_goals_extra, fixtures.home_goals_extra),
		away_goals_extra = COALESCE(EXCLUDED.away_goals_extra, fixtures.away_goals_extra),
		home_penalty_goals = COALESCE(EXCLUDED.home_penalty_goals, fixtures.home_penalty_goals),
		away_penalty_goals = COALESCE(EXCLUDED.away_penalty_goals, fixtures.away_penalty_goals),
		updated_at = NOW()
`

// Upsert inserts or updates a single fixture keyed by provider id
func (r *FixtureRepository) Upsert(ctx context.Context, fixture *models.Fixture) error {
	query := upsertFixtureQuery + ` RETURNING id, created_at, updated_at`

	err := r.db.Pool.QueryRow(
		ctx, query,
		fixture.FixtureID, fixture.LeagueID, fixture.Season, fixture.Round,
		fixture.HomeTeamID, fixture.AwayTeamID, fixture.KickoffAt,
		string(fixture.Status), fixture.Elapsed, fixture.Venue, fixture.Referee,
		fixture.HomeGoals, fixture.AwayGoals, fixture.HomeGoalsHalf, fixture.AwayGoalsHalf,
		fixture.HomeGoalsExtra, fixture.AwayGoalsExtra, fixture.HomePenaltyGoals, fixture.AwayPenaltyGoals,
	).Scan(&fixture.ID, &fixture.CreatedAt, &fixture.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert fixture: %w", err)
	}

	return nil
}

// UpsertBatch writes a group of fixtures. Rows are written one by one
// rather than in a pgx batch: a batch runs in an implicit transaction,
// where a single bad row would abort every row queued after it. A
// failed row is logged and skipped; the rest are still written.
// Returns the number of rows written.
func (r *FixtureRepository) UpsertBatch(ctx context.Context, fixtures []*models.Fixture) (int, error) {
	written := 0
	for _, fixture := range fixtures {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		_, err := r.db.Pool.Exec(
			ctx, upsertFixtureQuery,
			fixture.FixtureID, fixture.LeagueID, fixture.Season, fixture.Round,
			fixture.HomeTeamID, fixture.AwayTeamID, fixture.KickoffAt,
			string(fixture.Status), fixture.Elapsed, fixture.Venue, fixture.Referee,
			fixture.HomeGoals, fixture.AwayGoals, fixture.HomeGoalsHalf, fixture.AwayGoalsHalf,
			fixture.HomeGoalsExtra, fixture.AwayGoalsExtra, fixture.HomePenaltyGoals, fixture.AwayPenaltyGoals,
		)
		if err != nil {
			log.Error().Err(err).
				Int64("fixture_id", fixture.FixtureID).
				Msg("Failed to upsert fixture in batch")
			continue
		}
		written++
	}

	return written, nil
}

// GetByFixtureID retrieves a fixture by its provider id
func (r *FixtureRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (*models.Fixture, error) {
	query := `
		SELECT id, fixture_id, league_id, season, round, home_team_id, away_team_id,
		       kickoff_at, status, elapsed, venue, referee,
		       home_goals, away_goals, home_goals_half, away_goals_half,
		       home_goals_extra, away_goals_extra, home_penalty_goals, away_penalty_goals,
		       created_at, updated_at
		FROM fixtures
		WHERE fixture_id = $1
	`

	var fixture models.Fixture
	var status string
	err := r.db.Pool.QueryRow(ctx, query, fixtureID).Scan(
		&fixture.ID, &fixture.FixtureID, &fixture.LeagueID, &fixture.Season, &fixture.Round,
		&fixture.HomeTeamID, &fixture.AwayTeamID, &fixture.KickoffAt, &status,
		&fixture.Elapsed, &fixture.Venue, &fixture.Referee,
		&fixture.HomeGoals, &fixture.AwayGoals, &fixture.HomeGoalsHalf, &fixture.AwayGoalsHalf,
		&fixture.HomeGoalsExtra, &fixture.AwayGoalsExtra, &fixture.HomePenaltyGoals, &fixture.AwayPenaltyGoals,
		&fixture.CreatedAt, &fixture.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}

	fixture.Status = models.ParseFixtureStatus(status)
	return &fixture, nil
}

// ListLive retrieves fixtures currently in a live status
func (r *FixtureRepository) ListLive(ctx context.Context) ([]*models.Fixture, error) {
	query := `
		SELECT id, fixture_id, league_id, season, round, home_team_id, away_team_id,
		       kickoff_at, status, elapsed, venue, referee,
		       home_goals, away_goals, home_goals_half, away_goals_half,
		       home_goals_extra, away_goals_extra, home_penalty_goals, away_penalty_goals,
		       created_at, updated_at
		FROM fixtures
		WHERE status IN ('1H', 'HT', '2H', 'ET', 'BT', 'P')
		ORDER BY kickoff_at
	`

	return r.queryFixtures(ctx, query)
}

// ListByDateRange retrieves fixtures with kickoff inside [from, to)
func (r *FixtureRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*models.Fixture, error) {
	query := `
		SELECT id, fixture_id, league_id, season, round, home_team_id, away_team_id,
		       kickoff_at, status, elapsed, venue, referee,
		       home_goals, away_goals, home_goals_half, away_goals_half,
		       home_goals_extra, away_goals_extra, home_penalty_goals, away_penalty_goals,
		       created_at, updated_at
		FROM fixtures
		WHERE kickoff_at >= $1 AND kickoff_at < $2
		ORDER BY kickoff_at
	`

	return r.queryFixtures(ctx, query, from, to)
}

func (r *FixtureRepository) queryFixtures(ctx context.Context, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []*models.Fixture
	for rows.Next() {
		var fixture models.Fixture
		var status string
		err := rows.Scan(
			&fixture.ID, &fixture.FixtureID, &fixture.LeagueID, &fixture.Season, &fixture.Round,
			&fixture.HomeTeamID, &fixture.AwayTeamID, &fixture.KickoffAt, &status,
			&fixture.Elapsed, &fixture.Venue, &fixture.Referee,
			&fixture.HomeGoals, &fixture.AwayGoals, &fixture.HomeGoalsHalf, &fixture.AwayGoalsHalf,
			&fixture.HomeGoalsExtra, &fixture.AwayGoalsExtra, &fixture.HomePenaltyGoals, &fixture.AwayPenaltyGoals,
			&fixture.CreatedAt, &fixture.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixture.Status = models.ParseFixtureStatus(status)
		fixtures = append(fixtures, &fixture)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixtures: %w", err)
	}

	return fixtures, nil
}

// Count returns the total number of fixtures
func (r *FixtureRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM fixtures`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fixtures: %w", err)
	}
	return count, nil
}
