package models

import (
	"strings"
	"time"
)

// TrafficDensity categorises airport congestion in the latest snapshot.
type TrafficDensity string

const (
	TrafficLow    TrafficDensity = "low"
	TrafficMedium TrafficDensity = "medium"
	TrafficHigh   TrafficDensity = "high"
)

// WeatherReport is the METAR/TAF-equivalent observation for one airport.
type WeatherReport struct {
	CeilingFt          int     `json:"ceiling_ft"`
	VisKm              float64 `json:"vis_km"`
	WindKts            int     `json:"wind_kts"`
	XwindKts           int     `json:"xwind_kts"`
	Thunderstorm       bool    `json:"thunderstorm"`
	ForecastStable     bool    `json:"forecast_stable"`
	ForecastConvective bool    `json:"forecast_convective"`
	Volatility         float64 `json:"volatility"`
}

// NOTAM is one notice affecting an airport.
type NOTAM struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	EffectiveFrom time.Time `json:"effective_from"`
	EffectiveTo   time.Time `json:"effective_to"`
}

// MentionsRunwayClosure reports whether the notice text flags a closed runway.
func (n NOTAM) MentionsRunwayClosure() bool {
	text := strings.ToLower(n.Text)
	return strings.Contains(text, "rwy closed") ||
		strings.Contains(text, "runway closed") ||
		strings.Contains(text, "runway closure")
}

// AirportConditions bundles everything known about one airport in the
// latest snapshot.
type AirportConditions struct {
	Airport    string         `json:"airport"`
	Weather    *WeatherReport `json:"weather,omitempty"`
	NOTAMs     []NOTAM        `json:"notams"`
	Traffic    TrafficDensity `json:"traffic"`
	ObservedAt time.Time      `json:"observed_at"`
}

// HasRunwayClosure reports whether any active NOTAM closes a runway.
func (c AirportConditions) HasRunwayClosure() bool {
	for _, n := range c.NOTAMs {
		if n.MentionsRunwayClosure() {
			return true
		}
	}
	return false
}

// EnvironmentSnapshot is the most recent weather/NOTAM/traffic picture per
// airport for one organization.
type EnvironmentSnapshot struct {
	OrgID    string                       `json:"org_id"`
	TakenAt  time.Time                    `json:"taken_at"`
	Airports map[string]AirportConditions `json:"airports"`
}

// At returns the conditions for an airport, if present.
func (s *EnvironmentSnapshot) At(airport string) (AirportConditions, bool) {
	if s == nil {
		return AirportConditions{}, false
	}
	cond, ok := s.Airports[strings.ToUpper(airport)]
	return cond, ok
}
