package models

import "time"

// WeatherMinima defines the lesson-level thresholds a candidate window is
// compared against. Zero values mean "no limit defined".
type WeatherMinima struct {
	CeilingFt   int     `db:"min_ceiling_ft" json:"ceiling_ft"`
	VisKm       float64 `db:"min_vis_km" json:"vis_km"`
	WindMaxKts  int     `db:"max_wind_kts" json:"wind_max_kts"`
	XwindMaxKts int     `db:"max_xwind_kts" json:"xwind_max_kts"`
}

// Defined reports whether any threshold is set.
func (m WeatherMinima) Defined() bool {
	return m.CeilingFt > 0 || m.VisKm > 0 || m.WindMaxKts > 0 || m.XwindMaxKts > 0
}

// AirportPerformanceRule constrains which aircraft may operate at an
// airport, per organization policy.
type AirportPerformanceRule struct {
	ID                   string    `db:"id" json:"id"`
	OrgID                string    `db:"org_id" json:"org_id"`
	Airport              string    `db:"airport" json:"airport"`
	RunwayLengthFt       int       `db:"runway_length_ft" json:"runway_length_ft"`
	MaxDensityAltitudeFt int       `db:"max_density_altitude_ft" json:"max_density_altitude_ft"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// Policy is the organization-scoped rule set consumed read-only by the
// engines. Edited by external administration tooling.
type Policy struct {
	OrgID            string           `db:"org_id" json:"org_id"`
	Weights          ObjectiveWeights `json:"weights"`
	MaxSortiesPerDay int              `db:"max_sorties_per_day" json:"max_sorties_per_day"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// EffectiveWeights returns the policy weights, falling back to defaults
// when absent or not summing to 1.0.
func (p *Policy) EffectiveWeights() ObjectiveWeights {
	if p == nil || !p.Weights.Valid() {
		return DefaultObjectiveWeights()
	}
	return p.Weights
}

const defaultMaxSortiesPerDay = 6

// DutyLimit returns the per-day sortie ceiling, defaulting when unset.
func (p *Policy) DutyLimit() int {
	if p == nil || p.MaxSortiesPerDay <= 0 {
		return defaultMaxSortiesPerDay
	}
	return p.MaxSortiesPerDay
}
