package models

import (
	"encoding/json"
	"time"
)

// FixtureStatistic is one statistic line (shots, possession, ...) for
// one team in one fixture
type FixtureStatistic struct {
	ID        int       `db:"id"`
	FixtureID int64     `db:"fixture_id"`
	TeamID    int64     `db:"team_id"`
	StatType  string    `db:"stat_type"`
	StatValue string    `db:"stat_value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FixtureStatisticsInput is the per-team statistics block from the
// fixture statistics endpoint
type FixtureStatisticsInput struct {
	Team       TeamRef `json:"team"`
	Statistics []struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"` // provider mixes numbers, strings and null
	} `json:"statistics"`
}

// ToStatistics flattens the input into rows for one fixture.
// Null values are dropped; numeric and string values are stored as text.
func (si *FixtureStatisticsInput) ToStatistics(fixtureID int64) []*FixtureStatistic {
	stats := make([]*FixtureStatistic, 0, len(si.Statistics))
	for _, line := range si.Statistics {
		raw := string(line.Value)
		if raw == "" || raw == "null" {
			continue
		}
		// Strip quoting from string values like "32%"
		var asString string
		if err := json.Unmarshal(line.Value, &asString); err == nil {
			raw = asString
		}
		stats = append(stats, &FixtureStatistic{
			FixtureID: fixtureID,
			TeamID:    si.Team.ID,
			StatType:  line.Type,
			StatValue: raw,
		})
	}
	return stats
}
