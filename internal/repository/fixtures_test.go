package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"matchsync/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFixtureDeps(t *testing.T, db *Database, ctx context.Context) {
	t.Helper()

	require.NoError(t, db.Leagues.Upsert(ctx, &models.League{LeagueID: 39, Name: "Premier League"}))
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{TeamID: 40, Name: "Liverpool"}))
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{TeamID: 50, Name: "Manchester City"}))
}

func TestFixtureRepository_UpsertIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedFixtureDeps(t, db, ctx)

	fixture := &models.Fixture{
		FixtureID:  867946,
		LeagueID:   39,
		Season:     2025,
		HomeTeamID: 40,
		AwayTeamID: 50,
		KickoffAt:  time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		Status:     models.StatusFirstHalf,
		HomeGoals:  sql.NullInt32{Int32: 1, Valid: true},
		AwayGoals:  sql.NullInt32{Int32: 0, Valid: true},
	}

	require.NoError(t, db.Fixtures.Upsert(ctx, fixture))

	before, err := db.Fixtures.Count(ctx)
	require.NoError(t, err)

	// Same provider id, newer scoreline
	fixture.Status = models.StatusFinished
	fixture.HomeGoals = sql.NullInt32{Int32: 2, Valid: true}
	fixture.AwayGoals = sql.NullInt32{Int32: 1, Valid: true}
	require.NoError(t, db.Fixtures.Upsert(ctx, fixture))

	after, err := db.Fixtures.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "re-syncing the same id must not create a duplicate")

	stored, err := db.Fixtures.GetByFixtureID(ctx, 867946)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, stored.Status)
	assert.Equal(t, int32(2), stored.HomeGoals.Int32, "latest scoreline wins")
	assert.Equal(t, int32(1), stored.AwayGoals.Int32)
}

func TestFixtureRepository_UpsertBatchSkipsBadRow(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedFixtureDeps(t, db, ctx)

	kickoff := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	fixtures := []*models.Fixture{
		{FixtureID: 900001, LeagueID: 39, Season: 2025, HomeTeamID: 40, AwayTeamID: 50, KickoffAt: kickoff, Status: models.StatusNotStarted},
		// References a team that does not exist; fails its FK check
		{FixtureID: 900002, LeagueID: 39, Season: 2025, HomeTeamID: 40, AwayTeamID: 424242, KickoffAt: kickoff, Status: models.StatusNotStarted},
		{FixtureID: 900003, LeagueID: 39, Season: 2025, HomeTeamID: 50, AwayTeamID: 40, KickoffAt: kickoff, Status: models.StatusNotStarted},
	}

	written, err := db.Fixtures.UpsertBatch(ctx, fixtures)
	require.NoError(t, err, "a bad row must not abort the batch")
	assert.Equal(t, 2, written, "good rows around the bad one are still written")

	_, err = db.Fixtures.GetByFixtureID(ctx, 900003)
	assert.NoError(t, err, "row after the failed one should be persisted")
}

func TestFixtureRepository_ListLive(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedFixtureDeps(t, db, ctx)

	kickoff := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.Fixtures.Upsert(ctx, &models.Fixture{
		FixtureID: 910001, LeagueID: 39, Season: 2025,
		HomeTeamID: 40, AwayTeamID: 50, KickoffAt: kickoff,
		Status: models.StatusSecondHalf,
	}))
	require.NoError(t, db.Fixtures.Upsert(ctx, &models.Fixture{
		FixtureID: 910002, LeagueID: 39, Season: 2025,
		HomeTeamID: 50, AwayTeamID: 40, KickoffAt: kickoff,
		Status: models.StatusFinished,
	}))

	live, err := db.Fixtures.ListLive(ctx)
	require.NoError(t, err)

	var ids []int64
	for _, f := range live {
		ids = append(ids, f.FixtureID)
	}
	assert.Contains(t, ids, int64(910001), "in-play fixture should be listed")
	assert.NotContains(t, ids, int64(910002), "finished fixture should not be listed")
}

func TestStandingRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	seedFixtureDeps(t, db, ctx)

	standing := &models.Standing{
		LeagueID: 39, Season: 2025, TeamID: 40,
		Rank: 1, Points: 64, Played: 27, Wins: 20, Draws: 4, Losses: 3,
		GoalsFor: 62, GoalsAgainst: 24, GoalsDiff: 38,
	}

	require.NoError(t, db.Standings.Upsert(ctx, standing))

	standing.Points = 67
	standing.Played = 28
	require.NoError(t, db.Standings.Upsert(ctx, standing))

	table, err := db.Standings.ListByLeagueSeason(ctx, 39, 2025)
	require.NoError(t, err)
	require.Len(t, table, 1, "upsert must not duplicate the table row")
	assert.Equal(t, 67, table[0].Points)
}
