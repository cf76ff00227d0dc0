package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// DisruptionType classifies what triggered a replan.
type DisruptionType string

const (
	DisruptionWeather      DisruptionType = "weather"
	DisruptionNOTAM        DisruptionType = "notam"
	DisruptionAvailability DisruptionType = "availability"
	DisruptionAircraft     DisruptionType = "aircraft"
)

// Valid reports whether the trigger type is known.
func (t DisruptionType) Valid() bool {
	switch t {
	case DisruptionWeather, DisruptionNOTAM, DisruptionAvailability, DisruptionAircraft:
		return true
	}
	return false
}

// DisruptionEvent is an external change invalidating previously feasible
// assignments. Consumed once by the replanning engine, never mutated after.
type DisruptionEvent struct {
	ID          string         `db:"id" json:"id"`
	OrgID       string         `db:"org_id" json:"org_id"`
	Type        DisruptionType `db:"type" json:"type"`
	EntityID    string         `db:"entity_id" json:"entity_id"`
	Airport     string         `db:"airport" json:"airport"`
	WindowStart time.Time      `db:"window_start" json:"window_start"`
	WindowEnd   time.Time      `db:"window_end" json:"window_end"`
	Payload     types.JSONText `db:"payload" json:"payload,omitempty"`
	ReportedAt  time.Time      `db:"reported_at" json:"reported_at"`
}

// AlternativeStatus tracks human resolution of a generated alternative.
type AlternativeStatus string

const (
	AlternativeStatusPending  AlternativeStatus = "pending"
	AlternativeStatusAccepted AlternativeStatus = "accepted"
	AlternativeStatusRejected AlternativeStatus = "rejected"
)

// AlternativeSolution is a scored, feasible replacement candidate produced
// in response to a disruption. Retained for audit after resolution.
type AlternativeSolution struct {
	ID           string            `db:"id" json:"id"`
	OrgID        string            `db:"org_id" json:"org_id"`
	AssignmentID string            `db:"assignment_id" json:"assignment_id"`
	EventID      string            `db:"event_id" json:"event_id"`
	StudentID    string            `db:"student_id" json:"student_id"`
	InstructorID string            `db:"instructor_id" json:"instructor_id"`
	AircraftID   string            `db:"aircraft_id" json:"aircraft_id"`
	LessonID     string            `db:"lesson_id" json:"lesson_id"`
	Airport      string            `db:"airport" json:"airport"`
	StartAt      time.Time         `db:"start_at" json:"start_at"`
	EndAt        time.Time         `db:"end_at" json:"end_at"`
	TotalScore   float64           `db:"total_score" json:"total_score"`
	Breakdown    types.JSONText    `db:"breakdown" json:"breakdown,omitempty"`
	Status       AlternativeStatus `db:"status" json:"status"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}
