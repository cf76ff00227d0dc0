package models

import "math"

// ScoreBreakdown holds the six dimension scores in [0,1] plus the
// weighted total rounded to two decimals.
type ScoreBreakdown struct {
	WeatherFit          float64 `json:"weather_fit"`
	InstructorBalance   float64 `json:"instructor_balance"`
	Travel              float64 `json:"travel"`
	AircraftUtilization float64 `json:"aircraft_utilization"`
	StudentContinuity   float64 `json:"student_continuity"`
	CancellationRisk    float64 `json:"cancellation_risk"`
	TotalScore          float64 `json:"total_score"`
}

// ObjectiveWeights are the organization-configurable coefficients over the
// six scoring dimensions. They must sum to 1.0.
type ObjectiveWeights struct {
	WeatherFit          float64 `db:"weight_weather" json:"weather_fit"`
	InstructorBalance   float64 `db:"weight_balance" json:"instructor_balance"`
	Travel              float64 `db:"weight_travel" json:"travel"`
	AircraftUtilization float64 `db:"weight_utilization" json:"aircraft_utilization"`
	StudentContinuity   float64 `db:"weight_continuity" json:"student_continuity"`
	CancellationRisk    float64 `db:"weight_cancellation" json:"cancellation_risk"`
}

const weightSumTolerance = 0.001

// DefaultObjectiveWeights returns the stock weighting used when an
// organization has no policy or an invalid one.
func DefaultObjectiveWeights() ObjectiveWeights {
	return ObjectiveWeights{
		WeatherFit:          0.30,
		InstructorBalance:   0.20,
		Travel:              0.15,
		AircraftUtilization: 0.15,
		StudentContinuity:   0.10,
		CancellationRisk:    0.10,
	}
}

// Sum returns the total of all six weights.
func (w ObjectiveWeights) Sum() float64 {
	return w.WeatherFit + w.InstructorBalance + w.Travel +
		w.AircraftUtilization + w.StudentContinuity + w.CancellationRisk
}

// Valid reports whether the weights sum to 1.0 within tolerance.
func (w ObjectiveWeights) Valid() bool {
	return math.Abs(w.Sum()-1.0) <= weightSumTolerance
}

// Total computes the weighted total for a breakdown, rounded to two
// decimal places for stable comparison and display.
func (w ObjectiveWeights) Total(b ScoreBreakdown) float64 {
	total := b.WeatherFit*w.WeatherFit +
		b.InstructorBalance*w.InstructorBalance +
		b.Travel*w.Travel +
		b.AircraftUtilization*w.AircraftUtilization +
		b.StudentContinuity*w.StudentContinuity +
		b.CancellationRisk*w.CancellationRisk
	return math.Round(total*100) / 100
}
