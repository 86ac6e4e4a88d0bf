package model

import "time"

// Status is the usage severity tier of a snapshot
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "Warning"
	case StatusCritical:
		return "Critical"
	default:
		return "OK"
	}
}

// UsageSnapshot is one aggregation result. Recomputed fresh every pass and
// never mutated; the previous snapshot is kept only to detect status
// transitions.
//
// Percentage is not clamped: values above 100 represent a real over-limit
// state and must survive until display.
type UsageSnapshot struct {
	WindowStart   time.Time
	WindowEnd     time.Time
	TotalTokens   int
	Limit         int
	Percentage    float64
	TimeRemaining time.Duration
	Status        Status
}
