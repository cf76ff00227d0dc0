package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type scoringPolicyReader interface {
	GetByOrg(ctx context.Context, orgID string) (*models.Policy, error)
}

type scoringAssignmentReader interface {
	WeeklyInstructorCounts(ctx context.Context, orgID string, weekStart, weekEnd time.Time) (map[string]int, error)
	ListRecentByStudent(ctx context.Context, orgID, studentID string, limit int) ([]models.Assignment, error)
}

// ScoringService ranks one candidate sortie across the six objective
// dimensions. Scoring never rejects a candidate; feasibility does that.
type ScoringService struct {
	policies      scoringPolicyReader
	environment   environmentReader
	assignments   scoringAssignmentReader
	instructors   instructorReader
	aircraft      aircraftReader
	lessons       lessonReader
	validator     *validator.Validate
	logger        *zap.Logger
	timeout       time.Duration
	recentFlights int
}

// NewScoringService wires the objective scorer dependencies.
func NewScoringService(
	policies scoringPolicyReader,
	environment environmentReader,
	assignments scoringAssignmentReader,
	instructors instructorReader,
	aircraft aircraftReader,
	lessons lessonReader,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
	recentFlights int,
) *ScoringService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if recentFlights <= 0 {
		recentFlights = 5
	}
	return &ScoringService{
		policies:      policies,
		environment:   environment,
		assignments:   assignments,
		instructors:   instructors,
		aircraft:      aircraft,
		lessons:       lessons,
		validator:     validate,
		logger:        logger,
		timeout:       timeout,
		recentFlights: recentFlights,
	}
}

// scoreContext is the pre-fetched read-only bundle the six dimension
// scorers evaluate against.
type scoreContext struct {
	candidate dto.SortieCandidate

	snapshot   *models.EnvironmentSnapshot
	instructor *models.Instructor
	aircraft   *models.Aircraft
	lesson     *models.Lesson

	weeklyCounts map[string]int
	recent       []models.Assignment
}

const scoreNeutral = 0.5

// ScoreAssignment computes the six dimension scores and the weighted
// total for a candidate. Explicit weights override the organization
// policy; invalid explicit weights are rejected, while an invalid policy
// silently falls back to defaults.
func (s *ScoringService) ScoreAssignment(ctx context.Context, orgID string, candidate dto.SortieCandidate, weights *models.ObjectiveWeights) (*models.ScoreBreakdown, error) {
	if err := s.validator.Struct(candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sortie candidate")
	}
	candidate.Airport = strings.ToUpper(candidate.Airport)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	effective, err := s.resolveWeights(ctx, orgID, weights)
	if err != nil {
		return nil, err
	}

	sc := s.buildScoreContext(ctx, orgID, candidate)

	breakdown := &models.ScoreBreakdown{}
	scorers := []struct {
		target *float64
		eval   func(*scoreContext) float64
	}{
		{&breakdown.WeatherFit, scoreWeatherFit},
		{&breakdown.InstructorBalance, scoreInstructorBalance},
		{&breakdown.Travel, scoreTravel},
		{&breakdown.AircraftUtilization, scoreAircraftUtilization},
		{&breakdown.StudentContinuity, scoreStudentContinuity},
		{&breakdown.CancellationRisk, scoreCancellationRisk},
	}

	var wg sync.WaitGroup
	for _, sc2 := range scorers {
		wg.Add(1)
		go func(target *float64, eval func(*scoreContext) float64) {
			defer wg.Done()
			*target = clamp01(eval(sc))
		}(sc2.target, sc2.eval)
	}
	wg.Wait()

	breakdown.TotalScore = effective.Total(*breakdown)
	s.logger.Debug("candidate scored",
		zap.String("org_id", orgID),
		zap.String("student_id", candidate.StudentID),
		zap.Float64("total_score", breakdown.TotalScore))
	return breakdown, nil
}

func (s *ScoringService) resolveWeights(ctx context.Context, orgID string, explicit *models.ObjectiveWeights) (models.ObjectiveWeights, error) {
	if explicit != nil {
		if !explicit.Valid() {
			return models.ObjectiveWeights{}, appErrors.Clone(appErrors.ErrInvalidWeights, "objective weights must sum to 1.0")
		}
		return *explicit, nil
	}
	policy, err := s.policies.GetByOrg(ctx, orgID)
	if err != nil {
		s.logger.Warn("policy lookup failed, scoring with default weights", zap.String("org_id", orgID), zap.Error(err))
		return models.DefaultObjectiveWeights(), nil
	}
	return policy.EffectiveWeights(), nil
}

// buildScoreContext fans out the lookups. Scoring degrades to neutral
// dimension scores on missing data, so individual lookup failures are
// logged and tolerated.
func (s *ScoringService) buildScoreContext(ctx context.Context, orgID string, candidate dto.SortieCandidate) *scoreContext {
	sc := &scoreContext{candidate: candidate}
	weekStart, weekEnd := calendarWeek(candidate.StartAt)

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.Warn("score input unavailable", zap.String("input", name), zap.String("org_id", orgID), zap.Error(err))
			}
		}()
	}

	run("environment", func() error {
		snapshot, err := s.environment.Latest(ctx, orgID)
		sc.snapshot = snapshot
		return err
	})
	run("recent_assignments", func() error {
		recent, err := s.assignments.ListRecentByStudent(ctx, orgID, candidate.StudentID, s.recentFlights)
		sc.recent = recent
		return err
	})
	if candidate.InstructorID != "" {
		run("instructor", func() error {
			instructor, err := s.instructors.FindByID(ctx, candidate.InstructorID)
			sc.instructor = instructor
			return err
		})
		run("weekly_counts", func() error {
			counts, err := s.assignments.WeeklyInstructorCounts(ctx, orgID, weekStart, weekEnd)
			sc.weeklyCounts = counts
			return err
		})
	}
	if candidate.AircraftID != "" {
		run("aircraft", func() error {
			aircraft, err := s.aircraft.FindByID(ctx, candidate.AircraftID)
			sc.aircraft = aircraft
			return err
		})
	}
	if candidate.LessonID != "" {
		run("lesson", func() error {
			lesson, err := s.lessons.FindByID(ctx, candidate.LessonID)
			sc.lesson = lesson
			return err
		})
	}
	wg.Wait()
	return sc
}

// calendarWeek returns the UTC Monday 00:00 bounds of the week containing t.
func calendarWeek(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scoreWeatherFit(sc *scoreContext) float64 {
	cond, ok := sc.snapshot.At(sc.candidate.Airport)
	if !ok || cond.Weather == nil {
		return scoreNeutral
	}
	wx := cond.Weather
	score := 1.0
	if sc.lesson != nil && sc.lesson.Minima.Defined() {
		minima := sc.lesson.Minima
		if minima.CeilingFt > 0 && wx.CeilingFt < minima.CeilingFt {
			score -= 0.3
		}
		if minima.VisKm > 0 && wx.VisKm < minima.VisKm {
			score -= 0.3
		}
		if minima.WindMaxKts > 0 && wx.WindKts > minima.WindMaxKts {
			score -= 0.2
		}
		if minima.XwindMaxKts > 0 && wx.XwindKts > minima.XwindMaxKts {
			score -= 0.2
		}
	}
	if wx.ForecastStable {
		score += 0.1
	}
	if wx.Thunderstorm || wx.ForecastConvective {
		score -= 0.4
	}
	return score
}

func scoreInstructorBalance(sc *scoreContext) float64 {
	if sc.candidate.InstructorID == "" || sc.weeklyCounts == nil {
		return scoreNeutral
	}
	count := float64(sc.weeklyCounts[sc.candidate.InstructorID])
	var total float64
	for _, c := range sc.weeklyCounts {
		total += float64(c)
	}
	var mean float64
	if len(sc.weeklyCounts) > 0 {
		mean = total / float64(len(sc.weeklyCounts))
	}
	diff := count - mean
	if diff < 0 {
		diff = -diff
	}
	score := 1 - diff/(mean+1)*0.5
	if score < 0 {
		return 0
	}
	return score
}

// travelStubDistanceKm stands in for a great-circle computation until
// airport coordinates are wired in. Identical airports must score 1.0
// and increasing distance must decrease the score monotonically.
const (
	travelStubDistanceKm = 50.0
	travelFalloffRangeKm = 100.0
)

func scoreTravel(sc *scoreContext) float64 {
	if sc.instructor == nil {
		return scoreNeutral
	}
	if strings.EqualFold(sc.candidate.Airport, sc.instructor.BaseAirport) {
		return 1.0
	}
	return 1.0 - travelStubDistanceKm/travelFalloffRangeKm
}

// scoreAircraftUtilization front-loads usage just before scheduled
// maintenance: airframes 50-100h out are preferred, those under 50h
// are avoided.
func scoreAircraftUtilization(sc *scoreContext) float64 {
	if sc.aircraft == nil {
		return scoreNeutral
	}
	hours := sc.aircraft.HoursToMaintenance
	switch {
	case hours < 50:
		return 0.3
	case hours < 100:
		return 0.9
	case hours < 200:
		return 0.7
	default:
		return 0.5
	}
}

func scoreStudentContinuity(sc *scoreContext) float64 {
	if len(sc.recent) == 0 {
		return 0.7
	}
	primary := primaryInstructor(sc.recent)
	if sc.candidate.InstructorID != "" && sc.candidate.InstructorID == primary {
		return 1.0
	}
	switches := 0
	for _, a := range sc.recent {
		if a.InstructorID != primary {
			switches++
		}
	}
	score := 1.0 - float64(switches)*0.15
	if score < 0.3 {
		return 0.3
	}
	return score
}

// primaryInstructor returns the most frequent instructor among the
// recent assignments, preferring the more recently seen one on ties.
// The slice is ordered most recent first.
func primaryInstructor(recent []models.Assignment) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, a := range recent {
		if a.InstructorID == "" {
			continue
		}
		counts[a.InstructorID]++
		if _, ok := firstSeen[a.InstructorID]; !ok {
			firstSeen[a.InstructorID] = i
		}
	}
	var best string
	for id, c := range counts {
		if best == "" || c > counts[best] || (c == counts[best] && firstSeen[id] < firstSeen[best]) {
			best = id
		}
	}
	return best
}

const cancellationVolatilityFactor = 0.1

func scoreCancellationRisk(sc *scoreContext) float64 {
	cond, ok := sc.snapshot.At(sc.candidate.Airport)
	if !ok {
		return scoreNeutral
	}
	score := 1.0
	switch n := len(cond.NOTAMs); {
	case n > 5:
		score -= 0.3
	case n > 2:
		score -= 0.15
	}
	if cond.HasRunwayClosure() {
		score -= 0.5
	}
	switch cond.Traffic {
	case models.TrafficHigh:
		score -= 0.2
	case models.TrafficMedium:
		score -= 0.1
	}
	if cond.Weather != nil {
		score -= cond.Weather.Volatility * cancellationVolatilityFactor
	}
	return score
}
