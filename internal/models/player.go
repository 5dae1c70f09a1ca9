package models

import (
	"database/sql"
	"time"
)

// Player represents a squad member for a team in a given season
type Player struct {
	ID          int            `db:"id"`
	PlayerID    int64          `db:"player_id"`
	TeamID      int64          `db:"team_id"`
	Season      int            `db:"season"`
	Name        string         `db:"name"`
	Position    sql.NullString `db:"position"`
	Nationality sql.NullString `db:"nationality"`
	Age         sql.NullInt32  `db:"age"`
	Number      sql.NullInt32  `db:"number"`
	PhotoURL    sql.NullString `db:"photo_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// PlayerInput is a squad entry from the players endpoint
type PlayerInput struct {
	Player struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Age         *int   `json:"age"`
		Nationality string `json:"nationality"`
		Position    string `json:"position"`
		Number      *int   `json:"number"`
		Photo       string `json:"photo"`
	} `json:"player"`
}

// ToPlayer converts PlayerInput (from API) to the Player model
func (pi *PlayerInput) ToPlayer(teamID int64, season int) *Player {
	player := &Player{
		PlayerID: pi.Player.ID,
		TeamID:   teamID,
		Season:   season,
		Name:     pi.Player.Name,
	}

	if pi.Player.Position != "" {
		player.Position = sql.NullString{String: pi.Player.Position, Valid: true}
	}
	if pi.Player.Nationality != "" {
		player.Nationality = sql.NullString{String: pi.Player.Nationality, Valid: true}
	}
	if pi.Player.Age != nil {
		player.Age = sql.NullInt32{Int32: int32(*pi.Player.Age), Valid: true}
	}
	if pi.Player.Number != nil {
		player.Number = sql.NullInt32{Int32: int32(*pi.Player.Number), Valid: true}
	}
	if pi.Player.Photo != "" {
		player.PhotoURL = sql.NullString{String: pi.Player.Photo, Valid: true}
	}

	return player
}
