package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type assignmentStore interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, a *models.Assignment) error
	Update(ctx context.Context, a *models.Assignment) error
}

// AssignmentService manages the sortie lifecycle outside of replanning:
// creation, listing and the human-driven status transitions.
type AssignmentService struct {
	assignments assignmentStore
	feasibility feasibilityChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService wires assignment CRUD.
func NewAssignmentService(assignments assignmentStore, feasibility feasibilityChecker, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		feasibility: feasibility,
		validator:   validate,
		logger:      logger,
	}
}

// Create proposes a new sortie. The candidate must be feasible: creation
// is refused when any blocking constraint fails.
func (s *AssignmentService) Create(ctx context.Context, orgID string, req dto.CreateAssignmentRequest) (*models.Assignment, *models.FeasibilityReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	candidate := dto.SortieCandidate{
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		AircraftID:   req.AircraftID,
		LessonID:     req.LessonID,
		Airport:      req.Airport,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	}
	report, err := s.feasibility.CheckFeasibility(ctx, orgID, candidate)
	if err != nil {
		return nil, nil, err
	}
	if !report.Feasible {
		return nil, report, appErrors.Clone(appErrors.ErrConflict, "candidate sortie is not feasible")
	}

	assignment := &models.Assignment{
		OrgID:        orgID,
		StudentID:    req.StudentID,
		InstructorID: req.InstructorID,
		AircraftID:   req.AircraftID,
		LessonID:     req.LessonID,
		Airport:      strings.ToUpper(req.Airport),
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Status:       models.AssignmentStatusProposed,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, nil, err
	}
	s.logger.Info("assignment proposed",
		zap.String("assignment_id", assignment.ID),
		zap.String("org_id", orgID),
		zap.String("airport", assignment.Airport))
	return assignment, report, nil
}

// List returns assignments matching the query with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, orgID string, query dto.AssignmentQuery) ([]models.Assignment, *models.Pagination, error) {
	filter, err := buildAssignmentFilter(orgID, query)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get fetches one assignment scoped to the organization.
func (s *AssignmentService) Get(ctx context.Context, orgID, id string) (*models.Assignment, error) {
	return s.load(ctx, orgID, id)
}

// Confirm moves a proposed or pending sortie to confirmed.
func (s *AssignmentService) Confirm(ctx context.Context, orgID, id string) (*models.Assignment, error) {
	return s.transition(ctx, orgID, id, (*models.Assignment).Confirm)
}

// Cancel cancels a sortie, preserving the record.
func (s *AssignmentService) Cancel(ctx context.Context, orgID, id string) (*models.Assignment, error) {
	return s.transition(ctx, orgID, id, (*models.Assignment).Cancel)
}

// Complete closes out a flown sortie.
func (s *AssignmentService) Complete(ctx context.Context, orgID, id string) (*models.Assignment, error) {
	return s.transition(ctx, orgID, id, (*models.Assignment).Complete)
}

func (s *AssignmentService) transition(ctx context.Context, orgID, id string, apply func(*models.Assignment) error) (*models.Assignment, error) {
	assignment, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(assignment); err != nil {
		var illegal *models.IllegalTransitionError
		if errors.As(err, &illegal) {
			return nil, appErrors.Clone(appErrors.ErrConflict, illegal.Error())
		}
		return nil, err
	}
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) load(ctx context.Context, orgID, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, err
	}
	if assignment.OrgID != orgID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return assignment, nil
}

func buildAssignmentFilter(orgID string, query dto.AssignmentQuery) (models.AssignmentFilter, error) {
	filter := models.AssignmentFilter{
		OrgID:        orgID,
		StudentID:    query.StudentID,
		InstructorID: query.InstructorID,
		AircraftID:   query.AircraftID,
		Airport:      strings.ToUpper(query.Airport),
		Page:         query.Page,
		PageSize:     query.PageSize,
		SortBy:       query.SortBy,
		SortOrder:    query.SortOrder,
	}
	if query.Status != "" {
		for _, raw := range strings.Split(query.Status, ",") {
			status := models.AssignmentStatus(strings.TrimSpace(raw))
			if !status.Valid() {
				return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if query.From != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid from timestamp")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid to timestamp")
		}
		filter.To = &to
	}
	return filter, nil
}
