package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/flightline-ops/sortie-core/internal/models"
)

// PolicyRepository reads organization-scoped rule sets. The core never
// writes policies; they are edited by external administration tooling.
type PolicyRepository struct {
	db *sqlx.DB
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

type policyRow struct {
	OrgID              string  `db:"org_id"`
	WeightWeather      float64 `db:"weight_weather"`
	WeightBalance      float64 `db:"weight_balance"`
	WeightTravel       float64 `db:"weight_travel"`
	WeightUtilization  float64 `db:"weight_utilization"`
	WeightContinuity   float64 `db:"weight_continuity"`
	WeightCancellation float64 `db:"weight_cancellation"`
	MaxSortiesPerDay   int     `db:"max_sorties_per_day"`
}

// GetByOrg loads the organization policy. A missing row yields a policy
// with default weights and duty limits.
func (r *PolicyRepository) GetByOrg(ctx context.Context, orgID string) (*models.Policy, error) {
	const query = `SELECT org_id, weight_weather, weight_balance, weight_travel, weight_utilization, weight_continuity, weight_cancellation, max_sorties_per_day FROM org_policies WHERE org_id = $1`
	var row policyRow
	if err := r.db.GetContext(ctx, &row, query, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Policy{OrgID: orgID, Weights: models.DefaultObjectiveWeights()}, nil
		}
		return nil, fmt.Errorf("get org policy: %w", err)
	}
	return &models.Policy{
		OrgID: row.OrgID,
		Weights: models.ObjectiveWeights{
			WeatherFit:          row.WeightWeather,
			InstructorBalance:   row.WeightBalance,
			Travel:              row.WeightTravel,
			AircraftUtilization: row.WeightUtilization,
			StudentContinuity:   row.WeightContinuity,
			CancellationRisk:    row.WeightCancellation,
		},
		MaxSortiesPerDay: row.MaxSortiesPerDay,
	}, nil
}

// GetAirportRule returns the performance rule for one airport, if defined.
func (r *PolicyRepository) GetAirportRule(ctx context.Context, orgID, airport string) (*models.AirportPerformanceRule, error) {
	const query = `SELECT id, org_id, airport, runway_length_ft, max_density_altitude_ft, created_at FROM airport_performance_rules WHERE org_id = $1 AND airport = $2`
	var rule models.AirportPerformanceRule
	if err := r.db.GetContext(ctx, &rule, query, orgID, strings.ToUpper(airport)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get airport performance rule: %w", err)
	}
	return &rule, nil
}
