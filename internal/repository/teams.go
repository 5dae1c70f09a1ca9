package repository

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team, merging incoming non-null fields.
// Abbreviated refs from fixture payloads carry only id and name, so the
// COALESCE merge keeps fields the full roster sync filled in earlier.
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (team_id, name, code, country, founded, national, venue_name, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (team_id) DO UPDATE SET
			name = EXCLUDED.name,
			code = COALESCE(EXCLUDED.code, teams.code),
			country = COALESCE(EXCLUDED.country, teams.country),
			founded = COALESCE(EXCLUDED.founded, teams.founded),
			national = EXCLUDED.national,
			venue_name = COALESCE(EXCLUDED.venue_name, teams.venue_name),
			logo_url = COALESCE(EXCLUDED.logo_url, teams.logo_url),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.Name, team.Code, team.Country,
		team.Founded, team.National, team.VenueName, team.LogoURL,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// GetByTeamID retrieves a team by its provider id
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID int64) (*models.Team, error) {
	query := `
		SELECT id, team_id, name, code, country, founded, national, venue_name, logo_url,
		       created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(
		&team.ID, &team.TeamID, &team.Name, &team.Code, &team.Country,
		&team.Founded, &team.National, &team.VenueName, &team.LogoURL,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, team_id, name, code, country, founded, national, venue_name, logo_url,
		       created_at, updated_at
		FROM teams
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.Name, &team.Code, &team.Country,
			&team.Founded, &team.National, &team.VenueName, &team.LogoURL,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Delete deletes a team
func (r *TeamRepository) Delete(ctx context.Context, teamID int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM teams WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("team not found: team_id=%d", teamID)
	}

	log.Debug().Int64("team_id", teamID).Msg("Team deleted")
	return nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
