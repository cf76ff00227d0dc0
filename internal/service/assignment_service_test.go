package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type assignmentStoreStub struct {
	mu      sync.Mutex
	items   map[string]*models.Assignment
	created []*models.Assignment
	updated []*models.Assignment
}

func (s *assignmentStoreStub) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var out []models.Assignment
	for _, a := range s.items {
		if a.OrgID == filter.OrgID {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (s *assignmentStoreStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := s.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStoreStub) Create(ctx context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = "assignment-new"
	s.created = append(s.created, a)
	return nil
}

func (s *assignmentStoreStub) Update(ctx context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.updated = append(s.updated, &cp)
	return nil
}

func newAssignmentFixture(feasible bool) (*AssignmentService, *assignmentStoreStub) {
	confirmed := confirmedAssignment("assignment-1")
	completed := confirmedAssignment("assignment-2")
	completed.Status = models.AssignmentStatusCompleted

	store := &assignmentStoreStub{items: map[string]*models.Assignment{
		"assignment-1": &confirmed,
		"assignment-2": &completed,
	}}
	checker := &checkerStub{feasible: func(dto.SortieCandidate) bool { return feasible }}
	return NewAssignmentService(store, checker, nil, nil), store
}

func createRequest() dto.CreateAssignmentRequest {
	start, end := baseWindow()
	return dto.CreateAssignmentRequest{
		StudentID:    "student-1",
		InstructorID: "instructor-1",
		AircraftID:   "aircraft-1",
		LessonID:     "lesson-1",
		Airport:      "ksfo",
		StartAt:      start,
		EndAt:        end,
	}
}

func TestCreateAssignmentProposedWhenFeasible(t *testing.T) {
	svc, store := newAssignmentFixture(true)

	assignment, report, err := svc.Create(context.Background(), "org-1", createRequest())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Feasible)
	assert.Equal(t, models.AssignmentStatusProposed, assignment.Status)
	assert.Equal(t, "KSFO", assignment.Airport)
	assert.Len(t, store.created, 1)
}

func TestCreateAssignmentRefusedWhenInfeasible(t *testing.T) {
	svc, store := newAssignmentFixture(false)

	_, report, err := svc.Create(context.Background(), "org-1", createRequest())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Feasible)
	assert.Empty(t, store.created)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssignmentTransitions(t *testing.T) {
	svc, store := newAssignmentFixture(true)

	assignment, err := svc.Cancel(context.Background(), "org-1", "assignment-1")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCancelled, assignment.Status)
	require.Len(t, store.updated, 1)

	// Completed sorties cannot be cancelled.
	_, err = svc.Cancel(context.Background(), "org-1", "assignment-2")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAssignmentOrgScoping(t *testing.T) {
	svc, _ := newAssignmentFixture(true)

	_, err := svc.Get(context.Background(), "org-2", "assignment-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestBuildAssignmentFilterParsesStatusList(t *testing.T) {
	filter, err := buildAssignmentFilter("org-1", dto.AssignmentQuery{Status: "confirmed, pending_confirm"})
	require.NoError(t, err)
	assert.Equal(t, []models.AssignmentStatus{
		models.AssignmentStatusConfirmed,
		models.AssignmentStatusPendingConfirm,
	}, filter.Statuses)

	_, err = buildAssignmentFilter("org-1", dto.AssignmentQuery{Status: "bogus"})
	require.Error(t, err)
}
