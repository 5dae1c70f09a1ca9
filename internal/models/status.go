package models

// FixtureStatus is the enumerated match state reported by the provider.
type FixtureStatus string

const (
	StatusNotStarted        FixtureStatus = "NS"
	StatusFirstHalf         FixtureStatus = "1H"
	StatusHalftime          FixtureStatus = "HT"
	StatusSecondHalf        FixtureStatus = "2H"
	StatusExtraTime         FixtureStatus = "ET"
	StatusBreakTime         FixtureStatus = "BT"
	StatusPenalties         FixtureStatus = "P"
	StatusFinished          FixtureStatus = "FT"
	StatusFinishedExtraTime FixtureStatus = "AET"
	StatusFinishedPenalties FixtureStatus = "PEN"
	StatusSuspended         FixtureStatus = "SUSP"
	StatusInterrupted       FixtureStatus = "INT"
	StatusPostponed         FixtureStatus = "PST"
	StatusCancelled         FixtureStatus = "CANC"
	StatusAbandoned         FixtureStatus = "ABD"
	StatusAwarded           FixtureStatus = "AWD"
	StatusWalkover          FixtureStatus = "WO"
	StatusUnknown           FixtureStatus = "UNKNOWN"
)

var knownStatuses = map[FixtureStatus]struct{}{
	StatusNotStarted: {}, StatusFirstHalf: {}, StatusHalftime: {},
	StatusSecondHalf: {}, StatusExtraTime: {}, StatusBreakTime: {},
	StatusPenalties: {}, StatusFinished: {}, StatusFinishedExtraTime: {},
	StatusFinishedPenalties: {}, StatusSuspended: {}, StatusInterrupted: {},
	StatusPostponed: {}, StatusCancelled: {}, StatusAbandoned: {},
	StatusAwarded: {}, StatusWalkover: {},
}

// ParseFixtureStatus maps a provider status code to a FixtureStatus.
// Codes the provider adds after this code ships must not break consumers,
// so anything unrecognized maps to StatusUnknown.
func ParseFixtureStatus(code string) FixtureStatus {
	s := FixtureStatus(code)
	if _, ok := knownStatuses[s]; ok {
		return s
	}
	return StatusUnknown
}

// IsLive returns true while the match is in play (including breaks).
func (s FixtureStatus) IsLive() bool {
	switch s {
	case StatusFirstHalf, StatusHalftime, StatusSecondHalf,
		StatusExtraTime, StatusBreakTime, StatusPenalties:
		return true
	}
	return false
}

// IsFinished returns true once a final result exists.
func (s FixtureStatus) IsFinished() bool {
	switch s {
	case StatusFinished, StatusFinishedExtraTime, StatusFinishedPenalties, StatusAwarded, StatusWalkover:
		return true
	}
	return false
}
