package repository

import (
	"database/sql"
	"testing"

	"matchsync/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{
		TeamID:  40,
		Name:    "Liverpool",
		Code:    sql.NullString{String: "LIV", Valid: true},
		Country: sql.NullString{String: "England", Valid: true},
		Founded: sql.NullInt32{Int32: 1892, Valid: true},
	}

	err := db.Teams.Upsert(ctx, team)
	require.NoError(t, err, "Should successfully insert team")

	retrieved, err := db.Teams.GetByTeamID(ctx, team.TeamID)
	require.NoError(t, err, "Should retrieve inserted team")
	assert.Equal(t, "Liverpool", retrieved.Name)
	assert.Equal(t, "LIV", retrieved.Code.String)

	// Update with new venue, code omitted (null)
	team = &models.Team{
		TeamID:    40,
		Name:      "Liverpool FC",
		VenueName: sql.NullString{String: "Anfield", Valid: true},
	}
	err = db.Teams.Upsert(ctx, team)
	require.NoError(t, err, "Should successfully update team")

	updated, err := db.Teams.GetByTeamID(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "Liverpool FC", updated.Name, "Name should be updated")
	assert.Equal(t, "Anfield", updated.VenueName.String, "Venue should be filled in")
	assert.Equal(t, "LIV", updated.Code.String, "Null incoming field should not clobber stored value")
}

func TestTeamRepository_UpsertFromFixtureRef(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Abbreviated ref as nested in fixture payloads
	ref := models.TeamRef{ID: 50, Name: "Manchester City"}
	err := db.Teams.Upsert(ctx, ref.ToTeam())
	require.NoError(t, err, "Should insert a minimal team from a fixture ref")

	retrieved, err := db.Teams.GetByTeamID(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "Manchester City", retrieved.Name)
	assert.False(t, retrieved.Country.Valid, "Fields the ref does not carry stay null")
}

func TestTeamRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.GetByTeamID(ctx, 99999999)
	assert.Error(t, err, "Should return error for non-existent team")
}

func TestLeagueRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	league := &models.League{
		LeagueID: 39,
		Name:     "Premier League",
		Country:  sql.NullString{String: "England", Valid: true},
	}

	err := db.Leagues.Upsert(ctx, league)
	require.NoError(t, err, "Should insert league")

	err = db.Leagues.Upsert(ctx, league)
	require.NoError(t, err, "Re-upserting the same league should not error")

	retrieved, err := db.Leagues.GetByLeagueID(ctx, 39)
	require.NoError(t, err)
	assert.Equal(t, "Premier League", retrieved.Name)

	leagues, err := db.Leagues.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(leagues), 1)
}
