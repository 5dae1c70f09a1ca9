package repository

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/models"
)

// StandingRepository handles league table database operations
type StandingRepository struct {
	db *Database
}

// Upsert inserts or updates a table row keyed by league, season and team
func (r *StandingRepository) Upsert(ctx context.Context, standing *models.Standing) error {
	query := `
		INSERT INTO standings (
			league_id, season, team_id, rank, points, goals_diff,
			played, wins, draws, losses, goals_for, goals_against, form
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (league_id, season, team_id) DO UPDATE SET
			rank = EXCLUDED.rank,
			points = EXCLUDED.points,
			goals_diff = EXCLUDED.goals_diff,
			played = EXCLUDED.played,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			form = COALESCE(EXCLUDED.form, standings.form),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		standing.LeagueID, standing.Season, standing.TeamID, standing.Rank,
		standing.Points, standing.GoalsDiff, standing.Played, standing.Wins,
		standing.Draws, standing.Losses, standing.GoalsFor, standing.GoalsAgainst,
		standing.Form,
	).Scan(&standing.ID, &standing.CreatedAt, &standing.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert standing: %w", err)
	}

	return nil
}

// ListByLeagueSeason retrieves the table for one league season, by rank
func (r *StandingRepository) ListByLeagueSeason(ctx context.Context, leagueID int64, season int) ([]*models.Standing, error) {
	query := `
		SELECT id, league_id, season, team_id, rank, points, goals_diff,
		       played, wins, draws, losses, goals_for, goals_against, form,
		       created_at, updated_at
		FROM standings
		WHERE league_id = $1 AND season = $2
		ORDER BY rank
	`

	rows, err := r.db.Pool.Query(ctx, query, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}
	defer rows.Close()

	var standings []*models.Standing
	for rows.Next() {
		var s models.Standing
		err := rows.Scan(
			&s.ID, &s.LeagueID, &s.Season, &s.TeamID, &s.Rank, &s.Points, &s.GoalsDiff,
			&s.Played, &s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst, &s.Form,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}

	return standings, nil
}
