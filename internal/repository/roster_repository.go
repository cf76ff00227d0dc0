package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flightline-ops/sortie-core/internal/models"
)

// InstructorRepository reads the instructor roster.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new instructor repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

const instructorColumns = "id, org_id, full_name, base_airport, ratings, active, created_at, updated_at"

// FindByID loads an instructor by id.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE id = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// ListActive returns active instructors for the org, excluding the given
// id, bounded by limit. Used to build instructor-swap candidate pools.
func (r *InstructorRepository) ListActive(ctx context.Context, orgID, excludeID string, limit int) ([]models.Instructor, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE org_id = $1 AND active = TRUE AND id <> $2 ORDER BY full_name ASC LIMIT %d", instructorColumns, limit)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, orgID, excludeID); err != nil {
		return nil, fmt.Errorf("list active instructors: %w", err)
	}
	return instructors, nil
}

// StudentRepository reads the student roster.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, org_id, full_name, home_airport, completed_milestones, active, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// AircraftRepository reads the fleet.
type AircraftRepository struct {
	db *sqlx.DB
}

// NewAircraftRepository creates a new aircraft repository.
func NewAircraftRepository(db *sqlx.DB) *AircraftRepository {
	return &AircraftRepository{db: db}
}

const aircraftColumns = "id, org_id, tail, type, capabilities, takeoff_distance_ft, hours_to_maintenance, available, base_airport, created_at, updated_at"

// FindByID loads an aircraft by id.
func (r *AircraftRepository) FindByID(ctx context.Context, id string) (*models.Aircraft, error) {
	query := fmt.Sprintf("SELECT %s FROM aircraft WHERE id = $1", aircraftColumns)
	var aircraft models.Aircraft
	if err := r.db.GetContext(ctx, &aircraft, query, id); err != nil {
		return nil, err
	}
	return &aircraft, nil
}

// ListAvailable returns available airframes for the org, excluding the
// given id, bounded by limit. Used to build aircraft-swap candidate pools.
func (r *AircraftRepository) ListAvailable(ctx context.Context, orgID, excludeID string, limit int) ([]models.Aircraft, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s FROM aircraft WHERE org_id = $1 AND available = TRUE AND id <> $2 ORDER BY hours_to_maintenance DESC LIMIT %d", aircraftColumns, limit)
	var fleet []models.Aircraft
	if err := r.db.SelectContext(ctx, &fleet, query, orgID, excludeID); err != nil {
		return nil, fmt.Errorf("list available aircraft: %w", err)
	}
	return fleet, nil
}

// LessonRepository reads the syllabus.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindByID loads a lesson with its weather minima.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, org_id, code, name, required_capabilities, instructor_requirements, prerequisites, min_ceiling_ft AS "minima.min_ceiling_ft", min_vis_km AS "minima.min_vis_km", max_wind_kts AS "minima.max_wind_kts", max_xwind_kts AS "minima.max_xwind_kts", created_at, updated_at FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// AvailabilityRepository reads declared availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListForPersonWindow returns blocks for the person intersecting [from, to).
func (r *AvailabilityRepository) ListForPersonWindow(ctx context.Context, orgID, personID string, from, to time.Time) ([]models.AvailabilityBlock, error) {
	const query = `SELECT id, org_id, person_id, kind, start_at, end_at, note, created_at FROM availability_blocks WHERE org_id = $1 AND person_id = $2 AND start_at < $4 AND end_at > $3 ORDER BY start_at ASC`
	var blocks []models.AvailabilityBlock
	if err := r.db.SelectContext(ctx, &blocks, query, orgID, personID, from, to); err != nil {
		return nil, fmt.Errorf("list availability blocks: %w", err)
	}
	return blocks, nil
}
