package repository

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// LeagueRepository handles league database operations
type LeagueRepository struct {
	db *Database
}

// Upsert inserts or updates a league, merging incoming non-null fields
func (r *LeagueRepository) Upsert(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (league_id, name, type, country, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (league_id) DO UPDATE SET
			name = EXCLUDED.name,
			type = COALESCE(EXCLUDED.type, leagues.type),
			country = COALESCE(EXCLUDED.country, leagues.country),
			logo_url = COALESCE(EXCLUDED.logo_url, leagues.logo_url),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		league.LeagueID, league.Name, league.Type, league.Country, league.LogoURL,
	).Scan(&league.ID, &league.CreatedAt, &league.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert league: %w", err)
	}

	return nil
}

// GetByLeagueID retrieves a league by its provider id
func (r *LeagueRepository) GetByLeagueID(ctx context.Context, leagueID int64) (*models.League, error) {
	query := `
		SELECT id, league_id, name, type, country, logo_url, created_at, updated_at
		FROM leagues
		WHERE league_id = $1
	`

	var league models.League
	err := r.db.Pool.QueryRow(ctx, query, leagueID).Scan(
		&league.ID, &league.LeagueID, &league.Name, &league.Type,
		&league.Country, &league.LogoURL, &league.CreatedAt, &league.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("league %d: %w", leagueID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	return &league, nil
}

// List retrieves all tracked leagues
func (r *LeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `
		SELECT id, league_id, name, type, country, logo_url, created_at, updated_at
		FROM leagues
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []*models.League
	for rows.Next() {
		var league models.League
		err := rows.Scan(
			&league.ID, &league.LeagueID, &league.Name, &league.Type,
			&league.Country, &league.LogoURL, &league.CreatedAt, &league.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, &league)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leagues: %w", err)
	}

	return leagues, nil
}

// Count returns the total number of leagues
func (r *LeagueRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM leagues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leagues: %w", err)
	}
	return count, nil
}
