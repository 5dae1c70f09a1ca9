package repository

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// StatisticRepository handles fixture statistic database operations
type StatisticRepository struct {
	db *Database
}

// Upsert inserts or updates one statistic line
func (r *StatisticRepository) Upsert(ctx context.Context, stat *models.FixtureStatistic) error {
	query := `
		INSERT INTO fixture_statistics (fixture_id, team_id, stat_type, stat_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fixture_id, team_id, stat_type) DO UPDATE SET
			stat_value = EXCLUDED.stat_value,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		stat.FixtureID, stat.TeamID, stat.StatType, stat.StatValue,
	).Scan(&stat.ID, &stat.CreatedAt, &stat.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert fixture statistic: %w", err)
	}

	return nil
}

// UpsertAll writes a set of statistic lines, skipping failed rows.
// Returns the number of rows written.
func (r *StatisticRepository) UpsertAll(ctx context.Context, stats []*models.FixtureStatistic) (int, error) {
	written := 0
	for _, stat := range stats {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := r.Upsert(ctx, stat); err != nil {
			log.Error().Err(err).
				Int64("fixture_id", stat.FixtureID).
				Int64("team_id", stat.TeamID).
				Str("stat_type", stat.StatType).
				Msg("Failed to upsert fixture statistic")
			continue
		}
		written++
	}
	return written, nil
}

// ListByFixture retrieves all statistic lines for one fixture
func (r *StatisticRepository) ListByFixture(ctx context.Context, fixtureID int64) ([]*models.FixtureStatistic, error) {
	query := `
		SELECT id, fixture_id, team_id, stat_type, stat_value, created_at, updated_at
		FROM fixture_statistics
		WHERE fixture_id = $1
		ORDER BY team_id, stat_type
	`

	rows, err := r.db.Pool.Query(ctx, query, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixture statistics: %w", err)
	}
	defer rows.Close()

	var stats []*models.FixtureStatistic
	for rows.Next() {
		var stat models.FixtureStatistic
		err := rows.Scan(
			&stat.ID, &stat.FixtureID, &stat.TeamID, &stat.StatType, &stat.StatValue,
			&stat.CreatedAt, &stat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture statistic: %w", err)
		}
		stats = append(stats, &stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixture statistics: %w", err)
	}

	return stats, nil
}
