package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type alternativeStore interface {
	FindByID(ctx context.Context, id string) (*models.AlternativeSolution, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.AlternativeSolution, error)
	UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AlternativeStatus) error
	RejectSiblingsWithTx(ctx context.Context, exec sqlx.ExtContext, assignmentID, exceptID string) error
	CountPendingByAssignment(ctx context.Context, assignmentID string) (int, error)
}

type resolutionAssignmentStore interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	UpdateWithTx(ctx context.Context, exec sqlx.ExtContext, a *models.Assignment) error
	UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AssignmentStatus) error
}

// AlternativeService handles human resolution of generated alternatives.
type AlternativeService struct {
	alternatives alternativeStore
	assignments  resolutionAssignmentStore
	audits       auditWriter
	notifier     replanNotifier
	logger       *zap.Logger
}

// NewAlternativeService wires the resolution workflow.
func NewAlternativeService(alternatives alternativeStore, assignments resolutionAssignmentStore, audits auditWriter, notifier replanNotifier, logger *zap.Logger) *AlternativeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlternativeService{
		alternatives: alternatives,
		assignments:  assignments,
		audits:       audits,
		notifier:     notifier,
		logger:       logger,
	}
}

// List returns the alternatives for an assignment, best score first.
func (s *AlternativeService) List(ctx context.Context, orgID, assignmentID string) ([]models.AlternativeSolution, error) {
	assignment, err := s.loadAssignment(ctx, orgID, assignmentID)
	if err != nil {
		return nil, err
	}
	return s.alternatives.ListByAssignment(ctx, assignment.ID)
}

// Accept applies the chosen alternative to its assignment, confirms the
// assignment and rejects the remaining siblings, all in one transaction.
func (s *AlternativeService) Accept(ctx context.Context, orgID, alternativeID string) (*models.Assignment, error) {
	alt, err := s.loadAlternative(ctx, orgID, alternativeID)
	if err != nil {
		return nil, err
	}
	if alt.Status != models.AlternativeStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "alternative already resolved")
	}

	assignment, err := s.loadAssignment(ctx, orgID, alt.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != models.AssignmentStatusPendingConfirm {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment is not awaiting confirmation")
	}

	assignment.InstructorID = alt.InstructorID
	assignment.AircraftID = alt.AircraftID
	assignment.LessonID = alt.LessonID
	assignment.Airport = alt.Airport
	assignment.StartAt = alt.StartAt
	assignment.EndAt = alt.EndAt
	if err := assignment.Confirm(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "confirm assignment")
	}

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "begin accept transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.assignments.UpdateWithTx(ctx, tx, assignment); err != nil {
		return nil, err
	}
	if err := s.alternatives.UpdateStatusWithTx(ctx, tx, alt.ID, models.AlternativeStatusAccepted); err != nil {
		return nil, err
	}
	if err := s.alternatives.RejectSiblingsWithTx(ctx, tx, assignment.ID, alt.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "commit accept transaction")
	}

	s.recordResolution(ctx, orgID, models.AuditActionAlternativeAccepted, alt, assignment)
	if s.notifier != nil {
		s.notifier.Notify(ctx, []string{assignment.StudentID, assignment.InstructorID}, assignment.ID,
			"Sortie reconfirmed at "+assignment.Airport+" starting "+assignment.StartAt.UTC().Format(time.RFC3339)+".")
	}
	return assignment, nil
}

// Reject marks one alternative rejected. Rejecting the last pending
// alternative cancels the parked assignment: nothing automatic is left
// to confirm.
func (s *AlternativeService) Reject(ctx context.Context, orgID, alternativeID string) error {
	alt, err := s.loadAlternative(ctx, orgID, alternativeID)
	if err != nil {
		return err
	}
	if alt.Status != models.AlternativeStatusPending {
		return appErrors.Clone(appErrors.ErrConflict, "alternative already resolved")
	}

	assignment, err := s.loadAssignment(ctx, orgID, alt.AssignmentID)
	if err != nil {
		return err
	}

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "begin reject transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.alternatives.UpdateStatusWithTx(ctx, tx, alt.ID, models.AlternativeStatusRejected); err != nil {
		return err
	}

	pending, err := s.alternatives.CountPendingByAssignment(ctx, assignment.ID)
	if err != nil {
		return err
	}
	cancelled := false
	if pending <= 1 && assignment.Status == models.AssignmentStatusPendingConfirm {
		if err := assignment.Cancel(); err == nil {
			if err := s.assignments.UpdateStatusWithTx(ctx, tx, assignment.ID, models.AssignmentStatusCancelled); err != nil {
				return err
			}
			cancelled = true
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "commit reject transaction")
	}

	s.recordResolution(ctx, orgID, models.AuditActionAlternativeRejected, alt, assignment)
	if cancelled && s.notifier != nil {
		s.notifier.Notify(ctx, []string{assignment.StudentID, assignment.InstructorID}, assignment.ID,
			"All proposed alternatives were rejected; the sortie has been cancelled.")
	}
	return nil
}

func (s *AlternativeService) loadAlternative(ctx context.Context, orgID, id string) (*models.AlternativeSolution, error) {
	alt, err := s.alternatives.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alternative not found")
		}
		return nil, err
	}
	if alt.OrgID != orgID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "alternative not found")
	}
	return alt, nil
}

func (s *AlternativeService) loadAssignment(ctx context.Context, orgID, id string) (*models.Assignment, error) {
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

func (s *AlternativeService) recordResolution(ctx context.Context, orgID, action string, alt *models.AlternativeSolution, assignment *models.Assignment) {
	if s.audits == nil {
		return
	}
	details, err := json.Marshal(map[string]string{
		"alternative_id": alt.ID,
		"assignment_id":  assignment.ID,
		"status":         string(assignment.Status),
	})
	if err != nil {
		return
	}
	altID := alt.ID
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		OrgID:      orgID,
		Action:     action,
		Resource:   "alternative_solution",
		ResourceID: &altID,
		Details:    details,
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("alternative_id", alt.ID), zap.Error(err))
	}
}
