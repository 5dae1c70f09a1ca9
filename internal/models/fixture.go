package models

import (
	"database/sql"
	"time"
)

// Fixture represents a single scheduled or played match
type Fixture struct {
	ID         int            `db:"id"`
	FixtureID  int64          `db:"fixture_id"`
	LeagueID   int64          `db:"league_id"`
	Season     int            `db:"season"`
	Round      sql.NullString `db:"round"`
	HomeTeamID int64          `db:"home_team_id"`
	AwayTeamID int64          `db:"away_team_id"`
	KickoffAt  time.Time      `db:"kickoff_at"`
	Status     FixtureStatus  `db:"status"`
	Elapsed    sql.NullInt32  `db:"elapsed"`
	Venue      sql.NullString `db:"venue"`
	Referee    sql.NullString `db:"referee"`

	// Scores (null until known)
	HomeGoals        sql.NullInt32 `db:"home_goals"`
	AwayGoals        sql.NullInt32 `db:"away_goals"`
	HomeGoalsHalf    sql.NullInt32 `db:"home_goals_half"`
	AwayGoalsHalf    sql.NullInt32 `db:"away_goals_half"`
	HomeGoalsExtra   sql.NullInt32 `db:"home_goals_extra"`
	AwayGoalsExtra   sql.NullInt32 `db:"away_goals_extra"`
	HomePenaltyGoals sql.NullInt32 `db:"home_penalty_goals"`
	AwayPenaltyGoals sql.NullInt32 `db:"away_penalty_goals"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FixtureInput is a single fixture item as returned by the provider.
// The provider nests the related league and team objects inside each
// fixture, which is what lets the sync layer resolve dependencies.
type FixtureInput struct {
	Fixture struct {
		ID       int64   `json:"id"`
		Date     string  `json:"date"` // ISO 8601
		Referee  *string `json:"referee"`
		Timezone string  `json:"timezone"`
		Venue    struct {
			ID   *int64  `json:"id"`
			Name *string `json:"name"`
			City *string `json:"city"`
		} `json:"venue"`
		Status struct {
			Long    string `json:"long"`
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League LeagueInput `json:"league"`
	Teams  struct {
		Home TeamRef `json:"home"`
		Away TeamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
	Score struct {
		Halftime  ScorePair `json:"halftime"`
		Fulltime  ScorePair `json:"fulltime"`
		Extratime ScorePair `json:"extratime"`
		Penalty   ScorePair `json:"penalty"`
	} `json:"score"`
}

// TeamRef is the abbreviated team object nested inside fixture payloads
type TeamRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

// ScorePair holds a home/away score pair, null until the period is played
type ScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// ToFixture converts FixtureInput (from API) to the Fixture model
func (fi *FixtureInput) ToFixture() *Fixture {
	f := &Fixture{
		FixtureID:  fi.Fixture.ID,
		LeagueID:   fi.League.ID,
		Season:     fi.League.Season,
		HomeTeamID: fi.Teams.Home.ID,
		AwayTeamID: fi.Teams.Away.ID,
		Status:     ParseFixtureStatus(fi.Fixture.Status.Short),
	}

	if kickoff, err := time.Parse(time.RFC3339, fi.Fixture.Date); err == nil {
		f.KickoffAt = kickoff
	}

	if fi.League.Round != "" {
		f.Round = sql.NullString{String: fi.League.Round, Valid: true}
	}
	if fi.Fixture.Status.Elapsed != nil {
		f.Elapsed = sql.NullInt32{Int32: int32(*fi.Fixture.Status.Elapsed), Valid: true}
	}
	if fi.Fixture.Venue.Name != nil && *fi.Fixture.Venue.Name != "" {
		f.Venue = sql.NullString{String: *fi.Fixture.Venue.Name, Valid: true}
	}
	if fi.Fixture.Referee != nil && *fi.Fixture.Referee != "" {
		f.Referee = sql.NullString{String: *fi.Fixture.Referee, Valid: true}
	}

	f.HomeGoals = nullInt32(fi.Goals.Home)
	f.AwayGoals = nullInt32(fi.Goals.Away)
	f.HomeGoalsHalf = nullInt32(fi.Score.Halftime.Home)
	f.AwayGoalsHalf = nullInt32(fi.Score.Halftime.Away)
	f.HomeGoalsExtra = nullInt32(fi.Score.Extratime.Home)
	f.AwayGoalsExtra = nullInt32(fi.Score.Extratime.Away)
	f.HomePenaltyGoals = nullInt32(fi.Score.Penalty.Home)
	f.AwayPenaltyGoals = nullInt32(fi.Score.Penalty.Away)

	return f
}

// Valid reports whether the input carries the ids required to store it.
// Overlapping provider responses occasionally include placeholder rows
// with zero ids; those are skipped, not fatal.
func (fi *FixtureInput) Valid() bool {
	return fi.Fixture.ID > 0 && fi.League.ID > 0 && fi.Teams.Home.ID > 0 && fi.Teams.Away.ID > 0
}

// IsLive returns true if the fixture is currently in play
func (f *Fixture) IsLive() bool {
	return f.Status.IsLive()
}

// IsFinished returns true if the fixture has a final result
func (f *Fixture) IsFinished() bool {
	return f.Status.IsFinished()
}

func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}
