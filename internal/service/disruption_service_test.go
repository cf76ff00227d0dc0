package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/pkg/config"
)

type disruptionAssignmentsStub struct {
	db *sqlx.DB

	byAirport  []models.Assignment
	byPerson   []models.Assignment
	byAircraft []models.Assignment

	mu            sync.Mutex
	statusUpdates map[string]models.AssignmentStatus
}

func (s *disruptionAssignmentsStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, opts)
}

func (s *disruptionAssignmentsStub) ListByAirportWindow(ctx context.Context, orgID, airport string, from, to time.Time) ([]models.Assignment, error) {
	return s.byAirport, nil
}

func (s *disruptionAssignmentsStub) ListByPersonWindow(ctx context.Context, orgID, personID string, from, to time.Time) ([]models.Assignment, error) {
	return s.byPerson, nil
}

func (s *disruptionAssignmentsStub) ListFutureByAircraft(ctx context.Context, orgID, aircraftID string, now time.Time) ([]models.Assignment, error) {
	return s.byAircraft, nil
}

func (s *disruptionAssignmentsStub) UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AssignmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusUpdates == nil {
		s.statusUpdates = map[string]models.AssignmentStatus{}
	}
	s.statusUpdates[id] = status
	return nil
}

type alternativeWriterStub struct {
	mu      sync.Mutex
	batches [][]models.AlternativeSolution
}

func (s *alternativeWriterStub) CreateBatchWithTx(ctx context.Context, exec sqlx.ExtContext, alternatives []models.AlternativeSolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, alternatives)
	return nil
}

type instructorPoolStub struct {
	pool []models.Instructor
}

func (s *instructorPoolStub) ListActive(ctx context.Context, orgID, excludeID string, limit int) ([]models.Instructor, error) {
	return s.pool, nil
}

type aircraftPoolStub struct {
	pool []models.Aircraft
}

func (s *aircraftPoolStub) ListAvailable(ctx context.Context, orgID, excludeID string, limit int) ([]models.Aircraft, error) {
	return s.pool, nil
}

type checkerStub struct {
	feasible func(candidate dto.SortieCandidate) bool
	err      error
}

func (s *checkerStub) CheckFeasibility(ctx context.Context, orgID string, candidate dto.SortieCandidate) (*models.FeasibilityReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	feasible := true
	if s.feasible != nil {
		feasible = s.feasible(candidate)
	}
	return &models.FeasibilityReport{Feasible: feasible}, nil
}

type scorerStub struct {
	score func(candidate dto.SortieCandidate) float64
}

func (s *scorerStub) ScoreAssignment(ctx context.Context, orgID string, candidate dto.SortieCandidate, weights *models.ObjectiveWeights) (*models.ScoreBreakdown, error) {
	score := 0.5
	if s.score != nil {
		score = s.score(candidate)
	}
	return &models.ScoreBreakdown{TotalScore: score}, nil
}

type eventWriterStub struct {
	events []*models.DisruptionEvent
}

func (s *eventWriterStub) Create(ctx context.Context, event *models.DisruptionEvent) error {
	s.events = append(s.events, event)
	return nil
}

type auditWriterStub struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (s *auditWriterStub) Create(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

type notifierStub struct {
	mu    sync.Mutex
	calls []string
}

func (s *notifierStub) Notify(ctx context.Context, recipientIDs []string, assignmentID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, assignmentID+": "+message)
}

type disruptionFixture struct {
	svc          *DisruptionService
	assignments  *disruptionAssignmentsStub
	alternatives *alternativeWriterStub
	checker      *checkerStub
	scorer       *scorerStub
	events       *eventWriterStub
	audits       *auditWriterStub
	notifier     *notifierStub
	mock         sqlmock.Sqlmock
}

func newDisruptionFixture(t *testing.T) *disruptionFixture {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	f := &disruptionFixture{
		assignments:  &disruptionAssignmentsStub{db: sqlx.NewDb(rawDB, "sqlmock")},
		alternatives: &alternativeWriterStub{},
		checker:      &checkerStub{},
		scorer:       &scorerStub{},
		events:       &eventWriterStub{},
		audits:       &auditWriterStub{},
		notifier:     &notifierStub{},
		mock:         mock,
	}
	f.svc = NewDisruptionService(
		f.assignments,
		f.alternatives,
		&instructorPoolStub{},
		&aircraftPoolStub{},
		f.checker,
		f.scorer,
		f.events,
		f.audits,
		f.notifier,
		config.EngineConfig{},
		nil, nil,
	)
	return f
}

func confirmedAssignment(id string) models.Assignment {
	start, end := baseWindow()
	return models.Assignment{
		ID:           id,
		OrgID:        "org-1",
		StudentID:    "student-1",
		InstructorID: "instructor-1",
		AircraftID:   "aircraft-1",
		LessonID:     "lesson-1",
		Airport:      "KSFO",
		StartAt:      start,
		EndAt:        end,
		Status:       models.AssignmentStatusConfirmed,
	}
}

func TestHandleDisruptionWeatherGeneratesTimeShifts(t *testing.T) {
	f := newDisruptionFixture(t)
	f.assignments.byAirport = []models.Assignment{confirmedAssignment("assignment-1")}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{
		Type:    "weather",
		Airport: "ksfo",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.AffectedCount)
	assert.Equal(t, 3, result.AlternativesGenerated)
	assert.Equal(t, models.AssignmentStatusPendingConfirm, f.assignments.statusUpdates["assignment-1"])
	require.Len(t, f.alternatives.batches, 1)
	assert.Len(t, f.alternatives.batches[0], 3)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, "KSFO", f.events.events[0].Airport)
	assert.Len(t, f.audits.entries, 1)
	assert.Len(t, f.notifier.calls, 1)
}

func TestHandleDisruptionAlternativesSortedByScore(t *testing.T) {
	f := newDisruptionFixture(t)
	f.assignments.byAirport = []models.Assignment{confirmedAssignment("assignment-1")}
	// Later shifts score higher, so the stored order must reverse the
	// generation order.
	f.scorer.score = func(candidate dto.SortieCandidate) float64 {
		return float64(candidate.StartAt.Hour()%24) / 24
	}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "weather", Airport: "KSFO"})
	require.NoError(t, err)

	require.Len(t, f.alternatives.batches, 1)
	batch := f.alternatives.batches[0]
	for i := 1; i < len(batch); i++ {
		assert.GreaterOrEqual(t, batch[i-1].TotalScore, batch[i].TotalScore)
	}
}

func TestHandleDisruptionNoFeasibleCandidatesStillParksAssignment(t *testing.T) {
	f := newDisruptionFixture(t)
	f.assignments.byAirport = []models.Assignment{confirmedAssignment("assignment-1")}
	f.checker.feasible = func(dto.SortieCandidate) bool { return false }
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "weather", Airport: "KSFO"})
	require.NoError(t, err)

	assert.Equal(t, 0, result.AlternativesGenerated)
	assert.Equal(t, models.AssignmentStatusPendingConfirm, f.assignments.statusUpdates["assignment-1"])
	assert.Empty(t, f.alternatives.batches)
	require.Len(t, f.notifier.calls, 1)
	assert.Contains(t, f.notifier.calls[0], "manual intervention")
}

func TestHandleDisruptionAircraftSwaps(t *testing.T) {
	f := newDisruptionFixture(t)
	f.assignments.byAircraft = []models.Assignment{confirmedAssignment("assignment-1")}
	f.svc.aircraft = &aircraftPoolStub{pool: []models.Aircraft{{ID: "aircraft-2"}, {ID: "aircraft-3"}}}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{
		Type:     "aircraft",
		EntityID: "aircraft-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.AlternativesGenerated)
	require.Len(t, f.alternatives.batches, 1)
	for _, alt := range f.alternatives.batches[0] {
		assert.NotEqual(t, "aircraft-1", alt.AircraftID)
	}
}

func TestHandleDisruptionIsolatesPerAssignmentFailures(t *testing.T) {
	f := newDisruptionFixture(t)
	cancelled := confirmedAssignment("assignment-2")
	cancelled.Status = models.AssignmentStatusCancelled
	f.assignments.byAirport = []models.Assignment{confirmedAssignment("assignment-1"), cancelled}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "weather", Airport: "KSFO"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.AffectedCount)
	var failed, succeeded int
	for _, outcome := range result.Outcomes {
		if outcome.Err != "" {
			failed++
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, succeeded)
	_, touched := f.assignments.statusUpdates["assignment-2"]
	assert.False(t, touched)
}

func TestHandleDisruptionRequiresAirportForWeather(t *testing.T) {
	f := newDisruptionFixture(t)

	_, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "weather"})
	require.Error(t, err)
	assert.Empty(t, f.events.events)
}

func TestHandleDisruptionRejectsUnknownType(t *testing.T) {
	f := newDisruptionFixture(t)

	_, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "volcano"})
	require.Error(t, err)
}

func TestHandleDisruptionStudentUnavailabilityShiftsInTime(t *testing.T) {
	f := newDisruptionFixture(t)
	affected := confirmedAssignment("assignment-1")
	f.assignments.byPerson = []models.Assignment{affected}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{
		Type:     "availability",
		EntityID: "student-1",
	})
	require.NoError(t, err)

	require.Len(t, f.alternatives.batches, 1)
	for _, alt := range f.alternatives.batches[0] {
		assert.Equal(t, "instructor-1", alt.InstructorID)
		assert.True(t, alt.StartAt.After(affected.StartAt))
	}
}

func TestHandleDisruptionSkipsCandidatesWhoseCheckErrors(t *testing.T) {
	f := newDisruptionFixture(t)
	f.assignments.byAirport = []models.Assignment{confirmedAssignment("assignment-1")}
	f.checker.err = errors.New("store down")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.HandleDisruption(context.Background(), "org-1", dto.DisruptionRequest{Type: "weather", Airport: "KSFO"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.AlternativesGenerated)
	assert.Equal(t, models.AssignmentStatusPendingConfirm, f.assignments.statusUpdates["assignment-1"])
}
