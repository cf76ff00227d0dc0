package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/pkg/config"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type disruptionAssignmentStore interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	ListByAirportWindow(ctx context.Context, orgID, airport string, from, to time.Time) ([]models.Assignment, error)
	ListByPersonWindow(ctx context.Context, orgID, personID string, from, to time.Time) ([]models.Assignment, error)
	ListFutureByAircraft(ctx context.Context, orgID, aircraftID string, now time.Time) ([]models.Assignment, error)
	UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AssignmentStatus) error
}

type alternativeWriter interface {
	CreateBatchWithTx(ctx context.Context, exec sqlx.ExtContext, alternatives []models.AlternativeSolution) error
}

type instructorPool interface {
	ListActive(ctx context.Context, orgID, excludeID string, limit int) ([]models.Instructor, error)
}

type aircraftPool interface {
	ListAvailable(ctx context.Context, orgID, excludeID string, limit int) ([]models.Aircraft, error)
}

type feasibilityChecker interface {
	CheckFeasibility(ctx context.Context, orgID string, candidate dto.SortieCandidate) (*models.FeasibilityReport, error)
}

type candidateScorer interface {
	ScoreAssignment(ctx context.Context, orgID string, candidate dto.SortieCandidate, weights *models.ObjectiveWeights) (*models.ScoreBreakdown, error)
}

type eventWriter interface {
	Create(ctx context.Context, event *models.DisruptionEvent) error
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type replanNotifier interface {
	Notify(ctx context.Context, recipientIDs []string, assignmentID, message string)
}

// DisruptionService reacts to external disruptions: it finds the affected
// assignments, parks them pending human confirmation and attaches ranked
// feasible alternatives.
type DisruptionService struct {
	assignments  disruptionAssignmentStore
	alternatives alternativeWriter
	instructors  instructorPool
	aircraft     aircraftPool
	feasibility  feasibilityChecker
	scorer       candidateScorer
	events       eventWriter
	audits       auditWriter
	notifier     replanNotifier
	validator    *validator.Validate
	logger       *zap.Logger

	replanHorizon    time.Duration
	maxAlternatives  int
	swapPoolSize     int
	timeShiftOffsets []time.Duration
}

// NewDisruptionService wires the replanning engine.
func NewDisruptionService(
	assignments disruptionAssignmentStore,
	alternatives alternativeWriter,
	instructors instructorPool,
	aircraft aircraftPool,
	feasibility feasibilityChecker,
	scorer candidateScorer,
	events eventWriter,
	audits auditWriter,
	notifier replanNotifier,
	engineCfg config.EngineConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *DisruptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engineCfg.ReplanHorizon <= 0 {
		engineCfg.ReplanHorizon = 48 * time.Hour
	}
	if engineCfg.MaxAlternatives <= 0 {
		engineCfg.MaxAlternatives = 3
	}
	if engineCfg.SwapPoolSize <= 0 {
		engineCfg.SwapPoolSize = 5
	}
	if len(engineCfg.TimeShiftOffsets) == 0 {
		engineCfg.TimeShiftOffsets = []time.Duration{2 * time.Hour, 4 * time.Hour, 24 * time.Hour}
	}
	return &DisruptionService{
		assignments:      assignments,
		alternatives:     alternatives,
		instructors:      instructors,
		aircraft:         aircraft,
		feasibility:      feasibility,
		scorer:           scorer,
		events:           events,
		audits:           audits,
		notifier:         notifier,
		validator:        validate,
		logger:           logger,
		replanHorizon:    engineCfg.ReplanHorizon,
		maxAlternatives:  engineCfg.MaxAlternatives,
		swapPoolSize:     engineCfg.SwapPoolSize,
		timeShiftOffsets: engineCfg.TimeShiftOffsets,
	}
}

// HandleDisruption processes one disruption event end to end. Failures on
// individual assignments are isolated: the rest of the batch still
// replans, and per-assignment errors come back in the outcome list.
func (s *DisruptionService) HandleDisruption(ctx context.Context, orgID string, req dto.DisruptionRequest) (*dto.DisruptionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid disruption payload")
	}

	event, err := s.buildEvent(orgID, req)
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	affected, err := s.lookupAffected(ctx, event)
	if err != nil {
		return nil, err
	}
	s.logger.Info("disruption reported",
		zap.String("event_id", event.ID),
		zap.String("org_id", orgID),
		zap.String("type", string(event.Type)),
		zap.Int("affected", len(affected)))

	result := &dto.DisruptionResult{
		EventID:       event.ID,
		AffectedCount: len(affected),
		Outcomes:      make([]dto.AssignmentOutcome, len(affected)),
	}

	var wg sync.WaitGroup
	for i := range affected {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assignment := affected[i]
			generated, err := s.replanAssignment(ctx, event, &assignment)
			outcome := dto.AssignmentOutcome{AssignmentID: assignment.ID, Alternatives: generated}
			if err != nil {
				outcome.Err = err.Error()
				s.logger.Error("replan failed for assignment",
					zap.String("event_id", event.ID),
					zap.String("assignment_id", assignment.ID),
					zap.Error(err))
			}
			result.Outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	for _, outcome := range result.Outcomes {
		result.AlternativesGenerated += outcome.Alternatives
	}

	s.recordAudit(ctx, event, result)
	return result, nil
}

func (s *DisruptionService) buildEvent(orgID string, req dto.DisruptionRequest) (*models.DisruptionEvent, error) {
	event := &models.DisruptionEvent{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Type:        models.DisruptionType(req.Type),
		EntityID:    req.EntityID,
		Airport:     strings.ToUpper(req.Airport),
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
		ReportedAt:  time.Now().UTC(),
	}
	switch event.Type {
	case models.DisruptionWeather, models.DisruptionNOTAM:
		if event.Airport == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "airport is required for weather and notam events")
		}
	case models.DisruptionAvailability, models.DisruptionAircraft:
		if event.EntityID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "entityId is required for availability and aircraft events")
		}
	}
	if req.Payload != nil {
		raw, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
		}
		event.Payload = raw
	}
	return event, nil
}

// lookupAffected branches on trigger type. Only pending_confirm and
// confirmed assignments can be affected; cancelled ones never are.
func (s *DisruptionService) lookupAffected(ctx context.Context, event *models.DisruptionEvent) ([]models.Assignment, error) {
	now := time.Now().UTC()
	switch event.Type {
	case models.DisruptionWeather, models.DisruptionNOTAM:
		return s.assignments.ListByAirportWindow(ctx, event.OrgID, event.Airport, now, now.Add(s.replanHorizon))
	case models.DisruptionAvailability:
		from, to := event.WindowStart, event.WindowEnd
		if from.IsZero() {
			from = now
		}
		if to.IsZero() {
			to = now.Add(s.replanHorizon)
		}
		return s.assignments.ListByPersonWindow(ctx, event.OrgID, event.EntityID, from, to)
	case models.DisruptionAircraft:
		return s.assignments.ListFutureByAircraft(ctx, event.OrgID, event.EntityID, now)
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unknown disruption type")
}

// replanAssignment generates, filters and persists alternatives for one
// affected assignment, then parks it pending_confirm. The status change
// and the alternative batch commit atomically.
func (s *DisruptionService) replanAssignment(ctx context.Context, event *models.DisruptionEvent, assignment *models.Assignment) (int, error) {
	candidates := s.generateCandidates(ctx, event, assignment)

	scored := make([]models.AlternativeSolution, 0, len(candidates))
	for _, candidate := range candidates {
		report, err := s.feasibility.CheckFeasibility(ctx, event.OrgID, candidate)
		if err != nil {
			s.logger.Warn("candidate check failed, skipping",
				zap.String("assignment_id", assignment.ID), zap.Error(err))
			continue
		}
		if !report.Feasible {
			continue
		}
		breakdown, err := s.scorer.ScoreAssignment(ctx, event.OrgID, candidate, nil)
		if err != nil {
			s.logger.Warn("candidate scoring failed, skipping",
				zap.String("assignment_id", assignment.ID), zap.Error(err))
			continue
		}
		alt, err := s.buildAlternative(event, assignment, candidate, breakdown)
		if err != nil {
			return 0, err
		}
		scored = append(scored, alt)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})
	if len(scored) > s.maxAlternatives {
		scored = scored[:s.maxAlternatives]
	}

	if err := assignment.MarkPendingConfirm(); err != nil {
		return 0, err
	}

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "begin replan transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.assignments.UpdateStatusWithTx(ctx, tx, assignment.ID, models.AssignmentStatusPendingConfirm); err != nil {
		return 0, err
	}
	if len(scored) > 0 {
		if err := s.alternatives.CreateBatchWithTx(ctx, tx, scored); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "commit replan transaction")
	}

	s.notifyParticipants(ctx, assignment, len(scored))
	return len(scored), nil
}

// generateCandidates picks a strategy per trigger type. Candidate pools
// are intentionally small; feasibility filtering does the real pruning.
func (s *DisruptionService) generateCandidates(ctx context.Context, event *models.DisruptionEvent, assignment *models.Assignment) []dto.SortieCandidate {
	base := dto.SortieCandidate{
		StudentID:    assignment.StudentID,
		InstructorID: assignment.InstructorID,
		AircraftID:   assignment.AircraftID,
		LessonID:     assignment.LessonID,
		Airport:      assignment.Airport,
		StartAt:      assignment.StartAt,
		EndAt:        assignment.EndAt,
	}

	switch event.Type {
	case models.DisruptionWeather, models.DisruptionNOTAM:
		return s.timeShiftCandidates(base)
	case models.DisruptionAvailability:
		if assignment.InstructorID == event.EntityID {
			return s.instructorSwapCandidates(ctx, event.OrgID, base)
		}
		// Student unavailability cannot be swapped away; shift instead.
		return s.timeShiftCandidates(base)
	case models.DisruptionAircraft:
		return s.aircraftSwapCandidates(ctx, event.OrgID, base)
	}
	return nil
}

func (s *DisruptionService) timeShiftCandidates(base dto.SortieCandidate) []dto.SortieCandidate {
	duration := base.EndAt.Sub(base.StartAt)
	candidates := make([]dto.SortieCandidate, 0, len(s.timeShiftOffsets))
	for _, offset := range s.timeShiftOffsets {
		shifted := base
		shifted.StartAt = base.StartAt.Add(offset)
		shifted.EndAt = shifted.StartAt.Add(duration)
		candidates = append(candidates, shifted)
	}
	return candidates
}

func (s *DisruptionService) instructorSwapCandidates(ctx context.Context, orgID string, base dto.SortieCandidate) []dto.SortieCandidate {
	pool, err := s.instructors.ListActive(ctx, orgID, base.InstructorID, s.swapPoolSize)
	if err != nil {
		s.logger.Warn("instructor pool lookup failed", zap.String("org_id", orgID), zap.Error(err))
		return nil
	}
	candidates := make([]dto.SortieCandidate, 0, len(pool))
	for _, instructor := range pool {
		swapped := base
		swapped.InstructorID = instructor.ID
		candidates = append(candidates, swapped)
	}
	return candidates
}

func (s *DisruptionService) aircraftSwapCandidates(ctx context.Context, orgID string, base dto.SortieCandidate) []dto.SortieCandidate {
	pool, err := s.aircraft.ListAvailable(ctx, orgID, base.AircraftID, s.swapPoolSize)
	if err != nil {
		s.logger.Warn("aircraft pool lookup failed", zap.String("org_id", orgID), zap.Error(err))
		return nil
	}
	candidates := make([]dto.SortieCandidate, 0, len(pool))
	for _, airframe := range pool {
		swapped := base
		swapped.AircraftID = airframe.ID
		candidates = append(candidates, swapped)
	}
	return candidates
}

func (s *DisruptionService) buildAlternative(event *models.DisruptionEvent, assignment *models.Assignment, candidate dto.SortieCandidate, breakdown *models.ScoreBreakdown) (models.AlternativeSolution, error) {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return models.AlternativeSolution{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode score breakdown")
	}
	return models.AlternativeSolution{
		ID:           uuid.NewString(),
		OrgID:        event.OrgID,
		AssignmentID: assignment.ID,
		EventID:      event.ID,
		StudentID:    candidate.StudentID,
		InstructorID: candidate.InstructorID,
		AircraftID:   candidate.AircraftID,
		LessonID:     candidate.LessonID,
		Airport:      candidate.Airport,
		StartAt:      candidate.StartAt,
		EndAt:        candidate.EndAt,
		TotalScore:   breakdown.TotalScore,
		Breakdown:    raw,
		Status:       models.AlternativeStatusPending,
	}, nil
}

func (s *DisruptionService) notifyParticipants(ctx context.Context, assignment *models.Assignment, alternatives int) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf("Sortie at %s on %s needs reconfirmation: %d alternative(s) proposed.",
		assignment.Airport, assignment.StartAt.UTC().Format(time.RFC3339), alternatives)
	if alternatives == 0 {
		message = fmt.Sprintf("Sortie at %s on %s was disrupted and no automatic alternative was found; manual intervention required.",
			assignment.Airport, assignment.StartAt.UTC().Format(time.RFC3339))
	}
	s.notifier.Notify(ctx, []string{assignment.StudentID, assignment.InstructorID}, assignment.ID, message)
}

func (s *DisruptionService) recordAudit(ctx context.Context, event *models.DisruptionEvent, result *dto.DisruptionResult) {
	if s.audits == nil {
		return
	}
	details, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("encode audit details failed", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	eventID := event.ID
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		OrgID:      event.OrgID,
		Action:     models.AuditActionDisruptionHandled,
		Resource:   "disruption_event",
		ResourceID: &eventID,
		Details:    details,
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
