package dto

import "time"

// SortieCandidate describes a proposed (not yet persisted) sortie to be
// checked or scored. Instructor, aircraft and lesson are optional; checks
// that need an absent id are skipped.
type SortieCandidate struct {
	StudentID    string    `json:"studentId" validate:"required"`
	InstructorID string    `json:"instructorId"`
	AircraftID   string    `json:"aircraftId"`
	LessonID     string    `json:"lessonId"`
	Airport      string    `json:"airport" validate:"required,len=4,alphanum"`
	StartAt      time.Time `json:"startAt" validate:"required"`
	EndAt        time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
}

// ScoreRequest wraps a candidate with optional weight overrides. When
// Weights is nil the organization policy weights apply.
type ScoreRequest struct {
	Candidate SortieCandidate `json:"candidate" validate:"required"`
	Weights   *WeightsPayload `json:"weights,omitempty"`
}

// WeightsPayload mirrors the six objective weights for API callers.
type WeightsPayload struct {
	WeatherFit          float64 `json:"weatherFit"`
	InstructorBalance   float64 `json:"instructorBalance"`
	Travel              float64 `json:"travel"`
	AircraftUtilization float64 `json:"aircraftUtilization"`
	StudentContinuity   float64 `json:"studentContinuity"`
	CancellationRisk    float64 `json:"cancellationRisk"`
}
