package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFixtureStatus(t *testing.T) {
	assert.Equal(t, StatusFirstHalf, ParseFixtureStatus("1H"))
	assert.Equal(t, StatusFinished, ParseFixtureStatus("FT"))
	assert.Equal(t, StatusPostponed, ParseFixtureStatus("PST"))
}

func TestParseFixtureStatus_UnknownCode(t *testing.T) {
	// Provider adds codes over time; unknowns must store, not drop
	assert.Equal(t, StatusUnknown, ParseFixtureStatus("LIVE2"))
	assert.Equal(t, StatusUnknown, ParseFixtureStatus(""))
}

func TestFixtureStatus_Phases(t *testing.T) {
	assert.True(t, StatusHalftime.IsLive())
	assert.True(t, StatusPenalties.IsLive())
	assert.False(t, StatusNotStarted.IsLive())
	assert.False(t, StatusFinished.IsLive())

	assert.True(t, StatusFinishedPenalties.IsFinished())
	assert.True(t, StatusWalkover.IsFinished())
	assert.False(t, StatusSuspended.IsFinished())
	assert.False(t, StatusUnknown.IsFinished())
}

func TestFixtureInput_ToFixture(t *testing.T) {
	var input FixtureInput
	input.Fixture.ID = 868549
	input.Fixture.Date = "2026-08-29T16:30:00+00:00"
	input.Fixture.Status.Short = "2H"
	elapsed := 67
	input.Fixture.Status.Elapsed = &elapsed
	input.League.ID = 39
	input.League.Season = 2026
	input.League.Round = "Regular Season - 3"
	input.Teams.Home.ID = 40
	input.Teams.Away.ID = 50
	home, away := 2, 1
	input.Goals.Home = &home
	input.Goals.Away = &away

	f := input.ToFixture()

	assert.EqualValues(t, 868549, f.FixtureID)
	assert.Equal(t, StatusSecondHalf, f.Status)
	assert.EqualValues(t, 67, f.Elapsed.Int32)
	assert.Equal(t, "Regular Season - 3", f.Round.String)
	assert.EqualValues(t, 2, f.HomeGoals.Int32)
	assert.EqualValues(t, 1, f.AwayGoals.Int32)
	assert.False(t, f.HomeGoalsExtra.Valid, "Unplayed periods stay null")
	assert.Equal(t, 2026, f.KickoffAt.Year())
}

func TestFixtureInput_Valid(t *testing.T) {
	var input FixtureInput
	input.Fixture.ID = 1
	input.League.ID = 39
	input.Teams.Home.ID = 40
	input.Teams.Away.ID = 50
	assert.True(t, input.Valid())

	input.Teams.Away.ID = 0
	assert.False(t, input.Valid())
}
