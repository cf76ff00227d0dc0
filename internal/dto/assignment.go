package dto

import "time"

// CreateAssignmentRequest proposes a new sortie.
type CreateAssignmentRequest struct {
	StudentID    string    `json:"studentId" validate:"required"`
	InstructorID string    `json:"instructorId" validate:"required"`
	AircraftID   string    `json:"aircraftId" validate:"required"`
	LessonID     string    `json:"lessonId" validate:"required"`
	Airport      string    `json:"airport" validate:"required,len=4,alphanum"`
	StartAt      time.Time `json:"startAt" validate:"required"`
	EndAt        time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
}

// AssignmentQuery describes list filters accepted by the API.
type AssignmentQuery struct {
	StudentID    string `form:"studentId"`
	InstructorID string `form:"instructorId"`
	AircraftID   string `form:"aircraftId"`
	Airport      string `form:"airport"`
	Status       string `form:"status"`
	From         string `form:"from"`
	To           string `form:"to"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
	SortBy       string `form:"sortBy"`
	SortOrder    string `form:"sortOrder"`
}
