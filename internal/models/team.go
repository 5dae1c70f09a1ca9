package models

import (
	"database/sql"
	"time"
)

// Team represents a club or national side
type Team struct {
	ID        int            `db:"id"`
	TeamID    int64          `db:"team_id"`
	Name      string         `db:"name"`
	Code      sql.NullString `db:"code"`
	Country   sql.NullString `db:"country"`
	Founded   sql.NullInt32  `db:"founded"`
	National  bool           `db:"national"`
	VenueName sql.NullString `db:"venue_name"`
	LogoURL   sql.NullString `db:"logo_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// TeamInput is the full team object returned by the teams endpoint
type TeamInput struct {
	Team struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Code     string `json:"code"`
		Country  string `json:"country"`
		Founded  *int   `json:"founded"`
		National bool   `json:"national"`
		Logo     string `json:"logo"`
	} `json:"team"`
	Venue struct {
		ID   *int64 `json:"id"`
		Name string `json:"name"`
		City string `json:"city"`
	} `json:"venue"`
}

// ToTeam converts TeamInput (from API) to the Team model
func (ti *TeamInput) ToTeam() *Team {
	team := &Team{
		TeamID:   ti.Team.ID,
		Name:     ti.Team.Name,
		National: ti.Team.National,
	}

	if ti.Team.Code != "" {
		team.Code = sql.NullString{String: ti.Team.Code, Valid: true}
	}
	if ti.Team.Country != "" {
		team.Country = sql.NullString{String: ti.Team.Country, Valid: true}
	}
	if ti.Team.Founded != nil {
		team.Founded = sql.NullInt32{Int32: int32(*ti.Team.Founded), Valid: true}
	}
	if ti.Venue.Name != "" {
		team.VenueName = sql.NullString{String: ti.Venue.Name, Valid: true}
	}
	if ti.Team.Logo != "" {
		team.LogoURL = sql.NullString{String: ti.Team.Logo, Valid: true}
	}

	return team
}

// ToTeam builds a minimal Team from the abbreviated ref nested in
// fixture payloads. Used to satisfy foreign keys when a fixture arrives
// before the full roster sync has seen the team.
func (tr *TeamRef) ToTeam() *Team {
	team := &Team{
		TeamID: tr.ID,
		Name:   tr.Name,
	}
	if tr.Logo != "" {
		team.LogoURL = sql.NullString{String: tr.Logo, Valid: true}
	}
	return team
}
