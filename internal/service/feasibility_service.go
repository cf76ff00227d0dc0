package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type feasibilityPolicyReader interface {
	GetByOrg(ctx context.Context, orgID string) (*models.Policy, error)
	GetAirportRule(ctx context.Context, orgID, airport string) (*models.AirportPerformanceRule, error)
}

type environmentReader interface {
	Latest(ctx context.Context, orgID string) (*models.EnvironmentSnapshot, error)
}

type dutyAssignmentReader interface {
	ListByInstructorAndDay(ctx context.Context, orgID, instructorID string, day time.Time) ([]models.Assignment, error)
}

type instructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type aircraftReader interface {
	FindByID(ctx context.Context, id string) (*models.Aircraft, error)
}

type lessonReader interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

type availabilityReader interface {
	ListForPersonWindow(ctx context.Context, orgID, personID string, from, to time.Time) ([]models.AvailabilityBlock, error)
}

// FeasibilityService validates one candidate sortie against all applicable
// operational constraints. Pure read-and-evaluate, no side effects.
type FeasibilityService struct {
	policies     feasibilityPolicyReader
	environment  environmentReader
	assignments  dutyAssignmentReader
	instructors  instructorReader
	students     studentReader
	aircraft     aircraftReader
	lessons      lessonReader
	availability availabilityReader
	validator    *validator.Validate
	logger       *zap.Logger
	timeout      time.Duration
}

// NewFeasibilityService wires the feasibility checker dependencies.
func NewFeasibilityService(
	policies feasibilityPolicyReader,
	environment environmentReader,
	assignments dutyAssignmentReader,
	instructors instructorReader,
	students studentReader,
	aircraft aircraftReader,
	lessons lessonReader,
	availability availabilityReader,
	validate *validator.Validate,
	logger *zap.Logger,
	timeout time.Duration,
) *FeasibilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FeasibilityService{
		policies:     policies,
		environment:  environment,
		assignments:  assignments,
		instructors:  instructors,
		students:     students,
		aircraft:     aircraft,
		lessons:      lessons,
		availability: availability,
		validator:    validate,
		logger:       logger,
		timeout:      timeout,
	}
}

// checkContext is the pre-fetched read-only bundle every constraint rule
// evaluates against. Rules never reach back to the data stores, which
// keeps them pure and safe to run concurrently.
type checkContext struct {
	orgID     string
	candidate dto.SortieCandidate

	policy    *models.Policy
	policyErr error

	snapshot    *models.EnvironmentSnapshot
	snapshotErr error

	instructor    *models.Instructor
	instructorErr error

	student    *models.Student
	studentErr error

	aircraft    *models.Aircraft
	aircraftErr error

	lesson    *models.Lesson
	lessonErr error

	airportRule    *models.AirportPerformanceRule
	airportRuleErr error

	studentBlocks       []models.AvailabilityBlock
	studentBlocksErr    error
	instructorBlocks    []models.AvailabilityBlock
	instructorBlocksErr error
	dutyAssignments     []models.Assignment
	dutyAssignmentsErr  error
}

type constraintRule struct {
	typ  models.ConstraintType
	eval func(*checkContext) models.ConstraintResult
}

var constraintRules = []constraintRule{
	{models.ConstraintAvailability, evalAvailability},
	{models.ConstraintQualifications, evalQualifications},
	{models.ConstraintAircraftCapability, evalAircraftCapability},
	{models.ConstraintAirportPerformance, evalAirportPerformance},
	{models.ConstraintWeatherMinima, evalWeatherMinima},
	{models.ConstraintDutyRules, evalDutyRules},
	{models.ConstraintStudentPrerequisites, evalStudentPrerequisites},
}

// CheckFeasibility evaluates every applicable constraint for the candidate
// and aggregates the results. Constraint failures are not errors; only
// malformed input or unavailability of the required student record is.
func (s *FeasibilityService) CheckFeasibility(ctx context.Context, orgID string, candidate dto.SortieCandidate) (*models.FeasibilityReport, error) {
	if err := s.validator.Struct(candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sortie candidate")
	}
	candidate.Airport = strings.ToUpper(candidate.Airport)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cc, err := s.buildContext(ctx, orgID, candidate)
	if err != nil {
		return nil, err
	}

	results := make([]models.ConstraintResult, len(constraintRules))
	var wg sync.WaitGroup
	for i, rule := range constraintRules {
		wg.Add(1)
		go func(i int, rule constraintRule) {
			defer wg.Done()
			result := rule.eval(cc)
			result.Type = rule.typ
			results[i] = result
		}(i, rule)
	}
	wg.Wait()

	report := models.BuildFeasibilityReport(results)
	s.logger.Debug("feasibility check complete",
		zap.String("org_id", orgID),
		zap.String("student_id", candidate.StudentID),
		zap.String("airport", candidate.Airport),
		zap.Bool("feasible", report.Feasible),
		zap.Int("blocking", len(report.BlockingIssues)),
		zap.Int("warnings", len(report.Warnings)))
	return &report, nil
}

// buildContext fans out all data-source lookups concurrently and collects
// per-source errors for the rules to interpret. Only failure to load the
// candidate's student record aborts the check outright.
func (s *FeasibilityService) buildContext(ctx context.Context, orgID string, candidate dto.SortieCandidate) (*checkContext, error) {
	cc := &checkContext{orgID: orgID, candidate: candidate}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { cc.policy, cc.policyErr = s.policies.GetByOrg(ctx, orgID) })
	run(func() { cc.snapshot, cc.snapshotErr = s.environment.Latest(ctx, orgID) })
	run(func() { cc.student, cc.studentErr = s.students.FindByID(ctx, candidate.StudentID) })
	run(func() {
		cc.studentBlocks, cc.studentBlocksErr = s.availability.ListForPersonWindow(ctx, orgID, candidate.StudentID, candidate.StartAt, candidate.EndAt)
	})
	if candidate.InstructorID != "" {
		run(func() { cc.instructor, cc.instructorErr = s.instructors.FindByID(ctx, candidate.InstructorID) })
		run(func() {
			cc.instructorBlocks, cc.instructorBlocksErr = s.availability.ListForPersonWindow(ctx, orgID, candidate.InstructorID, candidate.StartAt, candidate.EndAt)
		})
		run(func() {
			cc.dutyAssignments, cc.dutyAssignmentsErr = s.assignments.ListByInstructorAndDay(ctx, orgID, candidate.InstructorID, candidate.StartAt)
		})
	}
	if candidate.AircraftID != "" {
		run(func() { cc.aircraft, cc.aircraftErr = s.aircraft.FindByID(ctx, candidate.AircraftID) })
		run(func() { cc.airportRule, cc.airportRuleErr = s.policies.GetAirportRule(ctx, orgID, candidate.Airport) })
	}
	if candidate.LessonID != "" {
		run(func() { cc.lesson, cc.lessonErr = s.lessons.FindByID(ctx, candidate.LessonID) })
	}
	wg.Wait()

	if cc.studentErr != nil {
		if errors.Is(cc.studentErr, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(cc.studentErr, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "student record unavailable")
	}
	if cc.student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return cc, nil
}

// failClosed marks a blocking rule failed when its inputs could not be
// loaded. A blocking constraint must never pass silently on missing data.
func failClosed(message string) models.ConstraintResult {
	return models.ConstraintResult{
		Passed:   false,
		Blocking: true,
		Message:  message,
	}
}

func skipped(message string) models.ConstraintResult {
	return models.ConstraintResult{Passed: true, Skipped: true, Message: message}
}

func evalAvailability(cc *checkContext) models.ConstraintResult {
	if cc.studentBlocksErr != nil || cc.instructorBlocksErr != nil {
		return failClosed("availability data unavailable")
	}

	start, end := cc.candidate.StartAt, cc.candidate.EndAt
	persons := [][]models.AvailabilityBlock{cc.studentBlocks}
	if cc.candidate.InstructorID != "" {
		persons = append(persons, cc.instructorBlocks)
	}

	covered := false
	for _, blocks := range persons {
		for _, block := range blocks {
			if block.Kind == models.AvailabilityUnavailable && block.Overlaps(start, end) {
				return models.ConstraintResult{
					Passed:   false,
					Blocking: true,
					Message:  "Participant is unavailable during the requested window",
					Details:  map[string]interface{}{"person_id": block.PersonID, "from": block.StartAt, "to": block.EndAt},
				}
			}
			if block.Kind == models.AvailabilityAvailable && block.Covers(start, end) {
				covered = true
			}
		}
	}
	if !covered {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: false,
			Message:  "No declared availability covers the requested window",
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Availability confirmed"}
}

func evalQualifications(cc *checkContext) models.ConstraintResult {
	if cc.candidate.InstructorID == "" || cc.candidate.LessonID == "" {
		return skipped("no instructor or lesson requested")
	}
	if cc.instructorErr != nil || cc.lessonErr != nil || cc.instructor == nil || cc.lesson == nil {
		return failClosed("qualification data unavailable")
	}
	if len(cc.lesson.InstructorRequirements) == 0 {
		return models.ConstraintResult{Passed: true, Blocking: true, Message: "Lesson defines no instructor requirements"}
	}
	if !cc.instructor.HasRatings(cc.lesson.InstructorRequirements) {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: true,
			Message:  "Instructor does not meet lesson requirements",
			Details:  map[string]interface{}{"required": []string(cc.lesson.InstructorRequirements)},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Instructor qualified"}
}

func evalAircraftCapability(cc *checkContext) models.ConstraintResult {
	if cc.candidate.AircraftID == "" || cc.candidate.LessonID == "" {
		return skipped("no aircraft or lesson requested")
	}
	if cc.aircraftErr != nil || cc.lessonErr != nil || cc.aircraft == nil || cc.lesson == nil {
		return failClosed("aircraft capability data unavailable")
	}
	missing := cc.aircraft.MissingCapabilities(cc.lesson.RequiredCapabilities)
	if len(missing) > 0 {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: true,
			Message:  "Aircraft capabilities insufficient",
			Details:  map[string]interface{}{"missing": missing},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Aircraft capable"}
}

func evalAirportPerformance(cc *checkContext) models.ConstraintResult {
	if cc.candidate.AircraftID == "" {
		return skipped("no aircraft requested")
	}
	if cc.aircraftErr != nil || cc.airportRuleErr != nil || cc.aircraft == nil {
		return failClosed("airport performance data unavailable")
	}
	if cc.airportRule == nil {
		return models.ConstraintResult{Passed: true, Blocking: true, Message: "No performance rule defined for airport"}
	}
	if cc.airportRule.RunwayLengthFt > 0 && cc.aircraft.TakeoffDistanceFt > cc.airportRule.RunwayLengthFt {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: true,
			Message:  fmt.Sprintf("Aircraft requires %d ft but runway at %s is %d ft", cc.aircraft.TakeoffDistanceFt, cc.candidate.Airport, cc.airportRule.RunwayLengthFt),
			Details: map[string]interface{}{
				"takeoff_distance_ft": cc.aircraft.TakeoffDistanceFt,
				"runway_length_ft":    cc.airportRule.RunwayLengthFt,
			},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Airport performance rules satisfied"}
}

// evalWeatherMinima is advisory: forecasts can change before execution, so
// a bust never blocks feasibility on its own.
func evalWeatherMinima(cc *checkContext) models.ConstraintResult {
	if cc.candidate.LessonID == "" {
		return skipped("no lesson requested")
	}
	if cc.lessonErr != nil || cc.lesson == nil {
		return skipped("lesson minima unavailable")
	}
	if !cc.lesson.Minima.Defined() {
		return skipped("lesson defines no weather minima")
	}
	if cc.snapshotErr != nil || cc.snapshot == nil {
		return skipped("no weather data for airport")
	}
	cond, ok := cc.snapshot.At(cc.candidate.Airport)
	if !ok || cond.Weather == nil {
		return skipped("no weather data for airport")
	}

	minima := cc.lesson.Minima
	wx := cond.Weather
	var busts []string
	if minima.CeilingFt > 0 && wx.CeilingFt < minima.CeilingFt {
		busts = append(busts, fmt.Sprintf("ceiling %d ft below minimum %d ft", wx.CeilingFt, minima.CeilingFt))
	}
	if minima.VisKm > 0 && wx.VisKm < minima.VisKm {
		busts = append(busts, fmt.Sprintf("visibility %.1f km below minimum %.1f km", wx.VisKm, minima.VisKm))
	}
	if minima.WindMaxKts > 0 && wx.WindKts > minima.WindMaxKts {
		busts = append(busts, fmt.Sprintf("wind %d kt above maximum %d kt", wx.WindKts, minima.WindMaxKts))
	}
	if minima.XwindMaxKts > 0 && wx.XwindKts > minima.XwindMaxKts {
		busts = append(busts, fmt.Sprintf("crosswind %d kt above maximum %d kt", wx.XwindKts, minima.XwindMaxKts))
	}
	if len(busts) > 0 {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: false,
			Message:  "Weather below lesson minima: " + strings.Join(busts, "; "),
			Details:  map[string]interface{}{"busts": busts},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: false, Message: "Weather above lesson minima"}
}

func evalDutyRules(cc *checkContext) models.ConstraintResult {
	if cc.candidate.InstructorID == "" {
		return skipped("no instructor requested")
	}
	if cc.dutyAssignmentsErr != nil || cc.policyErr != nil {
		return failClosed("duty data unavailable")
	}
	limit := cc.policy.DutyLimit()
	count := len(cc.dutyAssignments)
	if count >= limit {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: true,
			Message:  fmt.Sprintf("Instructor duty limit reached (%d of %d sorties today)", count, limit),
			Details:  map[string]interface{}{"count": count, "limit": limit},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Within instructor duty limits"}
}

func evalStudentPrerequisites(cc *checkContext) models.ConstraintResult {
	if cc.candidate.LessonID == "" {
		return skipped("no lesson requested")
	}
	if cc.lessonErr != nil || cc.lesson == nil || cc.student == nil {
		return failClosed("lesson prerequisite data unavailable")
	}
	missing := cc.student.MissingPrerequisites(cc.lesson.Prerequisites)
	if len(missing) > 0 {
		return models.ConstraintResult{
			Passed:   false,
			Blocking: true,
			Message:  "Student prerequisites not met",
			Details:  map[string]interface{}{"missing": missing},
		}
	}
	return models.ConstraintResult{Passed: true, Blocking: true, Message: "Student prerequisites satisfied"}
}
