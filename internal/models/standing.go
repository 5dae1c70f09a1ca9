package models

import (
	"database/sql"
	"time"
)

// Standing is one table row for a team in a league season
type Standing struct {
	ID           int            `db:"id"`
	LeagueID     int64          `db:"league_id"`
	Season       int            `db:"season"`
	TeamID       int64          `db:"team_id"`
	Rank         int            `db:"rank"`
	Points       int            `db:"points"`
	GoalsDiff    int            `db:"goals_diff"`
	Played       int            `db:"played"`
	Wins         int            `db:"wins"`
	Draws        int            `db:"draws"`
	Losses       int            `db:"losses"`
	GoalsFor     int            `db:"goals_for"`
	GoalsAgainst int            `db:"goals_against"`
	Form         sql.NullString `db:"form"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// StandingsInput is the standings envelope for one league season.
// The provider nests rows as a list of groups (league phases).
type StandingsInput struct {
	League struct {
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Country   string          `json:"country"`
		Season    int             `json:"season"`
		Standings [][]StandingRow `json:"standings"`
	} `json:"league"`
}

// StandingRow is a single table entry within a standings group
type StandingRow struct {
	Rank      int     `json:"rank"`
	Team      TeamRef `json:"team"`
	Points    int     `json:"points"`
	GoalsDiff int     `json:"goalsDiff"`
	Form      string  `json:"form"`
	All       struct {
		Played int `json:"played"`
		Win    int `json:"win"`
		Draw   int `json:"draw"`
		Lose   int `json:"lose"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

// ToStanding converts a StandingRow to the Standing model
func (sr *StandingRow) ToStanding(leagueID int64, season int) *Standing {
	s := &Standing{
		LeagueID:     leagueID,
		Season:       season,
		TeamID:       sr.Team.ID,
		Rank:         sr.Rank,
		Points:       sr.Points,
		GoalsDiff:    sr.GoalsDiff,
		Played:       sr.All.Played,
		Wins:         sr.All.Win,
		Draws:        sr.All.Draw,
		Losses:       sr.All.Lose,
		GoalsFor:     sr.All.Goals.For,
		GoalsAgainst: sr.All.Goals.Against,
	}

	if sr.Form != "" {
		s.Form = sql.NullString{String: sr.Form, Valid: true}
	}

	return s
}
