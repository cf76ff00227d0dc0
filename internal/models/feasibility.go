package models

// ConstraintType identifies one operational rule evaluated for a candidate.
type ConstraintType string

const (
	ConstraintAvailability         ConstraintType = "availability"
	ConstraintQualifications       ConstraintType = "qualifications"
	ConstraintAircraftCapability   ConstraintType = "aircraft_capability"
	ConstraintAirportPerformance   ConstraintType = "airport_performance"
	ConstraintWeatherMinima        ConstraintType = "weather_minima"
	ConstraintDutyRules            ConstraintType = "duty_rules"
	ConstraintStudentPrerequisites ConstraintType = "student_prerequisites"
)

// ConstraintResult is one evaluated rule. Produced fresh per feasibility
// call, never persisted standalone.
type ConstraintResult struct {
	Type     ConstraintType         `json:"type"`
	Passed   bool                   `json:"passed"`
	Blocking bool                   `json:"blocking"`
	Skipped  bool                   `json:"skipped,omitempty"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// FeasibilityReport aggregates constraint results for one candidate.
// Feasible is true iff no blocking constraint failed.
type FeasibilityReport struct {
	Feasible       bool               `json:"feasible"`
	Results        []ConstraintResult `json:"results"`
	BlockingIssues []string           `json:"blocking_issues"`
	Warnings       []string           `json:"warnings"`
}

// BuildFeasibilityReport derives the aggregate view from individual results.
func BuildFeasibilityReport(results []ConstraintResult) FeasibilityReport {
	report := FeasibilityReport{
		Feasible:       true,
		Results:        results,
		BlockingIssues: []string{},
		Warnings:       []string{},
	}
	for _, r := range results {
		if r.Passed || r.Skipped {
			continue
		}
		if r.Blocking {
			report.Feasible = false
			report.BlockingIssues = append(report.BlockingIssues, r.Message)
		} else {
			report.Warnings = append(report.Warnings, r.Message)
		}
	}
	return report
}
