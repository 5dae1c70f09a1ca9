package repository

import (
	"context"
	"fmt"

	"matchsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a squad entry keyed by player, team and season
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (player_id, team_id, season, name, position, nationality, age, number, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (player_id, team_id, season) DO UPDATE SET
			name = EXCLUDED.name,
			position = COALESCE(EXCLUDED.position, players.position),
			nationality = COALESCE(EXCLUDED.nationality, players.nationality),
			age = COALESCE(EXCLUDED.age, players.age),
			number = COALESCE(EXCLUDED.number, players.number),
			photo_url = COALESCE(EXCLUDED.photo_url, players.photo_url),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.PlayerID, player.TeamID, player.Season, player.Name,
		player.Position, player.Nationality, player.Age, player.Number, player.PhotoURL,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// ListByTeamSeason retrieves the squad of one team for one season
func (r *PlayerRepository) ListByTeamSeason(ctx context.Context, teamID int64, season int) ([]*models.Player, error) {
	query := `
		SELECT id, player_id, team_id, season, name, position, nationality, age, number, photo_url,
		       created_at, updated_at
		FROM players
		WHERE team_id = $1 AND season = $2
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.ID, &player.PlayerID, &player.TeamID, &player.Season, &player.Name,
			&player.Position, &player.Nationality, &player.Age, &player.Number, &player.PhotoURL,
			&player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}

// GetByPlayerID retrieves the most recent squad entry for a player
func (r *PlayerRepository) GetByPlayerID(ctx context.Context, playerID int64) (*models.Player, error) {
	query := `
		SELECT id, player_id, team_id, season, name, position, nationality, age, number, photo_url,
		       created_at, updated_at
		FROM players
		WHERE player_id = $1
		ORDER BY season DESC
		LIMIT 1
	`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, playerID).Scan(
		&player.ID, &player.PlayerID, &player.TeamID, &player.Season, &player.Name,
		&player.Position, &player.Nationality, &player.Age, &player.Number, &player.PhotoURL,
		&player.CreatedAt, &player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}
