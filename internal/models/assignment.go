package models

import (
	"fmt"
	"time"
)

// AssignmentStatus is the closed set of sortie lifecycle states.
type AssignmentStatus string

const (
	AssignmentStatusProposed       AssignmentStatus = "proposed"
	AssignmentStatusConfirmed      AssignmentStatus = "confirmed"
	AssignmentStatusPendingConfirm AssignmentStatus = "pending_confirm"
	AssignmentStatusCancelled      AssignmentStatus = "cancelled"
	AssignmentStatusCompleted      AssignmentStatus = "completed"
)

// Valid reports whether the status is a known lifecycle state.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusProposed, AssignmentStatusConfirmed, AssignmentStatusPendingConfirm,
		AssignmentStatusCancelled, AssignmentStatusCompleted:
		return true
	}
	return false
}

// Assignment represents one scheduled training sortie. Rows are never
// physically deleted; cancellation is a status transition.
type Assignment struct {
	ID           string           `db:"id" json:"id"`
	OrgID        string           `db:"org_id" json:"org_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	InstructorID string           `db:"instructor_id" json:"instructor_id"`
	AircraftID   string           `db:"aircraft_id" json:"aircraft_id"`
	LessonID     string           `db:"lesson_id" json:"lesson_id"`
	Airport      string           `db:"airport" json:"airport"`
	StartAt      time.Time        `db:"start_at" json:"start_at"`
	EndAt        time.Time        `db:"end_at" json:"end_at"`
	Status       AssignmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// IllegalTransitionError signals a rejected status change.
type IllegalTransitionError struct {
	From AssignmentStatus
	To   AssignmentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal assignment transition %s -> %s", e.From, e.To)
}

// MarkPendingConfirm parks the assignment awaiting human resolution of a
// disruption. Only confirmed or proposed sorties can enter this state.
func (a *Assignment) MarkPendingConfirm() error {
	switch a.Status {
	case AssignmentStatusConfirmed, AssignmentStatusProposed, AssignmentStatusPendingConfirm:
		a.Status = AssignmentStatusPendingConfirm
		return nil
	}
	return &IllegalTransitionError{From: a.Status, To: AssignmentStatusPendingConfirm}
}

// Confirm moves a proposed or pending sortie to confirmed.
func (a *Assignment) Confirm() error {
	switch a.Status {
	case AssignmentStatusProposed, AssignmentStatusPendingConfirm, AssignmentStatusConfirmed:
		a.Status = AssignmentStatusConfirmed
		return nil
	}
	return &IllegalTransitionError{From: a.Status, To: AssignmentStatusConfirmed}
}

// Cancel marks the sortie cancelled, preserving the row for audit.
func (a *Assignment) Cancel() error {
	switch a.Status {
	case AssignmentStatusProposed, AssignmentStatusConfirmed, AssignmentStatusPendingConfirm:
		a.Status = AssignmentStatusCancelled
		return nil
	}
	return &IllegalTransitionError{From: a.Status, To: AssignmentStatusCancelled}
}

// Complete closes out a confirmed sortie after it has flown.
func (a *Assignment) Complete() error {
	if a.Status != AssignmentStatusConfirmed {
		return &IllegalTransitionError{From: a.Status, To: AssignmentStatusCompleted}
	}
	a.Status = AssignmentStatusCompleted
	return nil
}

// AssignmentFilter describes query params for listing assignments.
type AssignmentFilter struct {
	OrgID        string
	StudentID    string
	InstructorID string
	AircraftID   string
	Airport      string
	Statuses     []AssignmentStatus
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
