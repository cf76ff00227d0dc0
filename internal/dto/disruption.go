package dto

import (
	"time"

	"github.com/flightline-ops/sortie-core/internal/models"
)

// DisruptionRequest reports an external disruption to the replanner.
type DisruptionRequest struct {
	Type        string         `json:"type" validate:"required,oneof=weather notam availability aircraft"`
	EntityID    string         `json:"entityId"`
	Airport     string         `json:"airport"`
	WindowStart time.Time      `json:"windowStart"`
	WindowEnd   time.Time      `json:"windowEnd"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// AssignmentOutcome summarises replanning for one affected assignment.
type AssignmentOutcome struct {
	AssignmentID string `json:"assignmentId"`
	Alternatives int    `json:"alternatives"`
	Err          string `json:"error,omitempty"`
}

// DisruptionResult is the aggregate outcome of handling one event.
type DisruptionResult struct {
	EventID               string              `json:"eventId"`
	AffectedCount         int                 `json:"affectedCount"`
	AlternativesGenerated int                 `json:"alternativesGenerated"`
	Outcomes              []AssignmentOutcome `json:"outcomes"`
}

// SnapshotPayload carries an environment snapshot from the feed.
type SnapshotPayload struct {
	Airports map[string]models.AirportConditions `json:"airports" validate:"required,min=1"`
	TakenAt  time.Time                           `json:"takenAt"`
}
