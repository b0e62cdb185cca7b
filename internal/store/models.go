package store

import (
	"time"

	"actigraphy/internal/sleep"
)

// Provenance distinguishes operator-curated intervals from the toolchain's
// original estimates.
type Provenance string

const (
	ProvenanceManual Provenance = "manual"
	ProvenanceGGIR   Provenance = "ggir"
)

// Subject is one participant.
type Subject struct {
	ID            int64
	Name          string
	NPointsPerDay int
	IsFinished    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Day is one calendar day of a subject. (SubjectID, Date) is unique.
type Day struct {
	ID              int64
	SubjectID       int64
	Date            time.Time
	IsMissingSleep  bool
	IsMultipleSleep bool
	IsReviewed      bool
}

// SleepTime is a persisted interval owned by a day.
type SleepTime struct {
	ID         int64
	DayID      int64
	Provenance Provenance
	sleep.Interval
}

// DataPoint is one short-epoch sensor sample.
type DataPoint struct {
	ID                 int64
	SubjectID          int64
	Timestamp          time.Time
	TimestampUTCOffset int
	SensorAngle        float64
	SensorAcceleration float64
	NonWear            bool
}

// TimestampWithTZ returns the sample time in the subject's local zone.
func (p DataPoint) TimestampWithTZ() time.Time {
	return sleep.Localize(p.Timestamp, p.TimestampUTCOffset)
}

// DayFlags carries a partial update of the operator flags. Nil fields are left
// untouched.
type DayFlags struct {
	IsMissingSleep  *bool
	IsMultipleSleep *bool
	IsReviewed      *bool
}

// Empty reports whether the update changes nothing.
func (f DayFlags) Empty() bool {
	return f.IsMissingSleep == nil && f.IsMultipleSleep == nil && f.IsReviewed == nil
}

// NewSubject is the full ingestion payload written by CreateSubject.
type NewSubject struct {
	Name          string
	NPointsPerDay int
	Days          []NewDay
	DataPoints    []DataPoint
}

// NewDay is one day of an ingestion payload.
type NewDay struct {
	Date           time.Time
	SleepTimes     []sleep.Interval
	GGIRSleepTimes []sleep.Interval
}
