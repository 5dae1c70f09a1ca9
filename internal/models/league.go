package models

import (
	"database/sql"
	"time"
)

// League represents a competition tracked by the sync engine
type League struct {
	ID        int            `db:"id"`
	LeagueID  int64          `db:"league_id"`
	Name      string         `db:"name"`
	Type      sql.NullString `db:"type"`
	Country   sql.NullString `db:"country"`
	LogoURL   sql.NullString `db:"logo_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// LeagueInput is the league object as nested in provider payloads
type LeagueInput struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

// ToLeague converts LeagueInput (from API) to the League model
func (li *LeagueInput) ToLeague() *League {
	league := &League{
		LeagueID: li.ID,
		Name:     li.Name,
	}

	if li.Type != "" {
		league.Type = sql.NullString{String: li.Type, Valid: true}
	}
	if li.Country != "" {
		league.Country = sql.NullString{String: li.Country, Valid: true}
	}
	if li.Logo != "" {
		league.LogoURL = sql.NullString{String: li.Logo, Valid: true}
	}

	return league
}
