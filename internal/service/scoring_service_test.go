package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type scoringAssignmentStub struct {
	weekly map[string]int
	recent []models.Assignment
}

func (s *scoringAssignmentStub) WeeklyInstructorCounts(ctx context.Context, orgID string, weekStart, weekEnd time.Time) (map[string]int, error) {
	return s.weekly, nil
}

func (s *scoringAssignmentStub) ListRecentByStudent(ctx context.Context, orgID, studentID string, limit int) ([]models.Assignment, error) {
	return s.recent, nil
}

func newScoringFixture() (*ScoringService, *scoringAssignmentStub, *aircraftStub, *environmentStub) {
	assignments := &scoringAssignmentStub{weekly: map[string]int{"instructor-1": 2, "instructor-2": 2}}
	aircraft := &aircraftStub{aircraft: &models.Aircraft{ID: "aircraft-1", HoursToMaintenance: 75}}
	env := &environmentStub{}

	svc := NewScoringService(
		&policyStub{},
		env,
		assignments,
		&instructorStub{instructor: &models.Instructor{ID: "instructor-1", BaseAirport: "KSFO"}},
		aircraft,
		&lessonStub{lesson: &models.Lesson{ID: "lesson-1"}},
		nil, nil, 0, 0,
	)
	return svc, assignments, aircraft, env
}

func TestScoreAssignmentUtilizationBanding(t *testing.T) {
	cases := []struct {
		hours float64
		want  float64
	}{
		{49.9, 0.3},
		{50, 0.9},
		{99.9, 0.9},
		{100, 0.7},
		{199.9, 0.7},
		{200, 0.5},
	}
	for _, tc := range cases {
		sc := &scoreContext{aircraft: &models.Aircraft{HoursToMaintenance: tc.hours}}
		assert.Equal(t, tc.want, scoreAircraftUtilization(sc), "hours=%v", tc.hours)
	}
}

func TestScoreAssignmentContinuityPrimaryMatch(t *testing.T) {
	sc := &scoreContext{
		candidate: dto.SortieCandidate{InstructorID: "instructor-1"},
		recent: []models.Assignment{
			{InstructorID: "instructor-1"},
			{InstructorID: "instructor-2"},
			{InstructorID: "instructor-1"},
		},
	}
	assert.Equal(t, 1.0, scoreStudentContinuity(sc))
}

func TestScoreAssignmentContinuityNewStudentNeutral(t *testing.T) {
	sc := &scoreContext{candidate: dto.SortieCandidate{InstructorID: "instructor-1"}}
	assert.Equal(t, 0.7, scoreStudentContinuity(sc))
}

func TestScoreAssignmentContinuitySwitchPenalty(t *testing.T) {
	sc := &scoreContext{
		candidate: dto.SortieCandidate{InstructorID: "instructor-9"},
		recent: []models.Assignment{
			{InstructorID: "instructor-1"},
			{InstructorID: "instructor-1"},
			{InstructorID: "instructor-2"},
			{InstructorID: "instructor-3"},
		},
	}
	// primary is instructor-1, two switches among recent flights.
	assert.InDelta(t, 0.7, scoreStudentContinuity(sc), 1e-9)
}

func TestScoreAssignmentTravelSameAirport(t *testing.T) {
	sc := &scoreContext{
		candidate:  dto.SortieCandidate{Airport: "KSFO"},
		instructor: &models.Instructor{BaseAirport: "ksfo"},
	}
	assert.Equal(t, 1.0, scoreTravel(sc))

	sc.candidate.Airport = "KOAK"
	away := scoreTravel(sc)
	assert.Less(t, away, 1.0)
	assert.GreaterOrEqual(t, away, 0.0)
}

func TestScoreAssignmentWeatherDefaultsWithoutData(t *testing.T) {
	sc := &scoreContext{candidate: dto.SortieCandidate{Airport: "KSFO"}}
	assert.Equal(t, scoreNeutral, scoreWeatherFit(sc))
}

func TestScoreAssignmentWeatherThunderstormPenalty(t *testing.T) {
	sc := &scoreContext{
		candidate: dto.SortieCandidate{Airport: "KSFO"},
		snapshot: &models.EnvironmentSnapshot{Airports: map[string]models.AirportConditions{
			"KSFO": {Weather: &models.WeatherReport{CeilingFt: 5000, VisKm: 10, Thunderstorm: true}},
		}},
	}
	assert.InDelta(t, 0.6, scoreWeatherFit(sc), 1e-9)
}

func TestScoreAssignmentCancellationRiskRunwayClosure(t *testing.T) {
	sc := &scoreContext{
		candidate: dto.SortieCandidate{Airport: "KSFO"},
		snapshot: &models.EnvironmentSnapshot{Airports: map[string]models.AirportConditions{
			"KSFO": {
				NOTAMs:  []models.NOTAM{{Text: "RWY CLOSED for maintenance"}},
				Traffic: models.TrafficHigh,
			},
		}},
	}
	// 1.0 - 0.5 closure - 0.2 high traffic
	assert.InDelta(t, 0.3, scoreCancellationRisk(sc), 1e-9)
}

func TestScoreAssignmentBalanceEvenLoad(t *testing.T) {
	sc := &scoreContext{
		candidate:    dto.SortieCandidate{InstructorID: "instructor-1"},
		weeklyCounts: map[string]int{"instructor-1": 2, "instructor-2": 2},
	}
	assert.InDelta(t, 1.0, scoreInstructorBalance(sc), 1e-9)
}

func TestScoreAssignmentTotalUsesDefaultWeights(t *testing.T) {
	svc, _, _, _ := newScoringFixture()
	start, end := baseWindow()
	candidate := dto.SortieCandidate{
		StudentID:    "student-1",
		InstructorID: "instructor-1",
		AircraftID:   "aircraft-1",
		LessonID:     "lesson-1",
		Airport:      "KSFO",
		StartAt:      start,
		EndAt:        end,
	}

	breakdown, err := svc.ScoreAssignment(context.Background(), "org-1", candidate, nil)
	require.NoError(t, err)

	weights := models.DefaultObjectiveWeights()
	assert.Equal(t, weights.Total(*breakdown), breakdown.TotalScore)
	assert.GreaterOrEqual(t, breakdown.TotalScore, 0.0)
	assert.LessOrEqual(t, breakdown.TotalScore, 1.0)
}

func TestScoreAssignmentRejectsInvalidExplicitWeights(t *testing.T) {
	svc, _, _, _ := newScoringFixture()
	start, end := baseWindow()
	candidate := dto.SortieCandidate{StudentID: "student-1", Airport: "KSFO", StartAt: start, EndAt: end}
	weights := &models.ObjectiveWeights{WeatherFit: 0.9, Travel: 0.5}

	_, err := svc.ScoreAssignment(context.Background(), "org-1", candidate, weights)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
}

func TestCalendarWeekBoundsMonday(t *testing.T) {
	// 2026-04-10 is a Friday.
	start, end := calendarWeek(time.Date(2026, 4, 10, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC), end)

	// Sunday belongs to the week starting the previous Monday.
	start, _ = calendarWeek(time.Date(2026, 4, 12, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), start)
}
