package models

import (
	"time"

	"github.com/lib/pq"
)

// Instructor represents a flight instructor on the organization roster.
type Instructor struct {
	ID          string         `db:"id" json:"id"`
	OrgID       string         `db:"org_id" json:"org_id"`
	FullName    string         `db:"full_name" json:"full_name"`
	BaseAirport string         `db:"base_airport" json:"base_airport"`
	Ratings     pq.StringArray `db:"ratings" json:"ratings"`
	Active      bool           `db:"active" json:"active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRatings reports whether the instructor holds every required rating.
func (i *Instructor) HasRatings(required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]bool, len(i.Ratings))
	for _, r := range i.Ratings {
		held[r] = true
	}
	for _, r := range required {
		if !held[r] {
			return false
		}
	}
	return true
}

// Student represents an enrolled student pilot.
type Student struct {
	ID                  string         `db:"id" json:"id"`
	OrgID               string         `db:"org_id" json:"org_id"`
	FullName            string         `db:"full_name" json:"full_name"`
	HomeAirport         string         `db:"home_airport" json:"home_airport"`
	CompletedMilestones pq.StringArray `db:"completed_milestones" json:"completed_milestones"`
	Active              bool           `db:"active" json:"active"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// MissingPrerequisites returns the lesson prerequisites the student has
// not yet completed.
func (s *Student) MissingPrerequisites(prereqs []string) []string {
	done := make(map[string]bool, len(s.CompletedMilestones))
	for _, m := range s.CompletedMilestones {
		done[m] = true
	}
	var missing []string
	for _, p := range prereqs {
		if !done[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// Aircraft represents one airframe in the fleet.
type Aircraft struct {
	ID                 string         `db:"id" json:"id"`
	OrgID              string         `db:"org_id" json:"org_id"`
	Tail               string         `db:"tail" json:"tail"`
	Type               string         `db:"type" json:"type"`
	Capabilities       pq.StringArray `db:"capabilities" json:"capabilities"`
	TakeoffDistanceFt  int            `db:"takeoff_distance_ft" json:"takeoff_distance_ft"`
	HoursToMaintenance float64        `db:"hours_to_maintenance" json:"hours_to_maintenance"`
	Available          bool           `db:"available" json:"available"`
	BaseAirport        string         `db:"base_airport" json:"base_airport"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// MissingCapabilities returns required capabilities the airframe lacks.
func (a *Aircraft) MissingCapabilities(required []string) []string {
	has := make(map[string]bool, len(a.Capabilities))
	for _, c := range a.Capabilities {
		has[c] = true
	}
	var missing []string
	for _, c := range required {
		if !has[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Lesson is one syllabus item with its operational requirements.
type Lesson struct {
	ID                     string         `db:"id" json:"id"`
	OrgID                  string         `db:"org_id" json:"org_id"`
	Code                   string         `db:"code" json:"code"`
	Name                   string         `db:"name" json:"name"`
	RequiredCapabilities   pq.StringArray `db:"required_capabilities" json:"required_capabilities"`
	InstructorRequirements pq.StringArray `db:"instructor_requirements" json:"instructor_requirements"`
	Prerequisites          pq.StringArray `db:"prerequisites" json:"prerequisites"`
	Minima                 WeatherMinima  `json:"minima"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`
}

// AvailabilityKind distinguishes declared available vs unavailable windows.
type AvailabilityKind string

const (
	AvailabilityAvailable   AvailabilityKind = "available"
	AvailabilityUnavailable AvailabilityKind = "unavailable"
)

// AvailabilityBlock is a declared time window for a person.
type AvailabilityBlock struct {
	ID        string           `db:"id" json:"id"`
	OrgID     string           `db:"org_id" json:"org_id"`
	PersonID  string           `db:"person_id" json:"person_id"`
	Kind      AvailabilityKind `db:"kind" json:"kind"`
	StartAt   time.Time        `db:"start_at" json:"start_at"`
	EndAt     time.Time        `db:"end_at" json:"end_at"`
	Note      string           `db:"note" json:"note"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// Overlaps reports whether the block intersects [start, end).
func (b AvailabilityBlock) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && b.EndAt.After(start)
}

// Covers reports whether the block fully contains [start, end).
func (b AvailabilityBlock) Covers(start, end time.Time) bool {
	return !b.StartAt.After(start) && !b.EndAt.Before(end)
}
