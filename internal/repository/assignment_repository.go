package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flightline-ops/sortie-core/internal/models"
)

const assignmentColumns = "id, org_id, student_id, instructor_id, aircraft_id, lesson_id, airport, start_at, end_at, status, created_at, updated_at"

// AssignmentRepository provides persistence for sorties. It is the sole
// writer of assignment rows; rows are never deleted.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// BeginTxx starts a transaction for callers that need atomic multi-row writes.
func (r *AssignmentRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// List returns assignments with optional filtering and pagination.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	base := "FROM assignments WHERE org_id = $1"
	args := []interface{}{filter.OrgID}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		base += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		base += fmt.Sprintf(" AND instructor_id = $%d", len(args))
	}
	if filter.AircraftID != "" {
		args = append(args, filter.AircraftID)
		base += fmt.Sprintf(" AND aircraft_id = $%d", len(args))
	}
	if filter.Airport != "" {
		args = append(args, strings.ToUpper(filter.Airport))
		base += fmt.Sprintf(" AND airport = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		base += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		base += fmt.Sprintf(" AND start_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		base += fmt.Sprintf(" AND start_at < $%d", len(args))
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"start_at":   true,
		"airport":    true,
		"status":     true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", assignmentColumns, base, sortBy, order, size, offset)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	return assignments, total, nil
}

// FindByID loads an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create stores a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	a.Airport = strings.ToUpper(a.Airport)

	const query = `INSERT INTO assignments (id, org_id, student_id, instructor_id, aircraft_id, lesson_id, airport, start_at, end_at, status, created_at, updated_at) VALUES (:id, :org_id, :student_id, :instructor_id, :aircraft_id, :lesson_id, :airport, :start_at, :end_at, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update rewrites the mutable assignment columns.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET student_id = :student_id, instructor_id = :instructor_id, aircraft_id = :aircraft_id, lesson_id = :lesson_id, airport = :airport, start_at = :start_at, end_at = :end_at, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// UpdateWithTx rewrites the mutable columns within an existing transaction.
func (r *AssignmentRepository) UpdateWithTx(ctx context.Context, exec sqlx.ExtContext, a *models.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET student_id = :student_id, instructor_id = :instructor_id, aircraft_id = :aircraft_id, lesson_id = :lesson_id, airport = :airport, start_at = :start_at, end_at = :end_at, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, a); err != nil {
		return fmt.Errorf("update assignment in tx: %w", err)
	}
	return nil
}

// UpdateStatusWithTx transitions an assignment's status within a transaction.
func (r *AssignmentRepository) UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AssignmentStatus) error {
	if _, err := exec.ExecContext(ctx, `UPDATE assignments SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return nil
}

// ListByInstructorAndDay returns an instructor's assignments overlapping the
// calendar day containing the given instant (UTC). Cancelled sorties do not
// count against duty limits.
func (r *AssignmentRepository) ListByInstructorAndDay(ctx context.Context, orgID, instructorID string, day time.Time) ([]models.Assignment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := fmt.Sprintf("SELECT %s FROM assignments WHERE org_id = $1 AND instructor_id = $2 AND start_at >= $3 AND start_at < $4 AND status NOT IN ('cancelled') ORDER BY start_at ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, orgID, instructorID, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("list assignments by instructor day: %w", err)
	}
	return assignments, nil
}

// WeeklyInstructorCounts returns the active assignment count per instructor
// for the given week window.
func (r *AssignmentRepository) WeeklyInstructorCounts(ctx context.Context, orgID string, weekStart, weekEnd time.Time) (map[string]int, error) {
	const query = `SELECT instructor_id, COUNT(*) AS n FROM assignments WHERE org_id = $1 AND start_at >= $2 AND start_at < $3 AND status NOT IN ('cancelled') GROUP BY instructor_id`
	rows, err := r.db.QueryxContext(ctx, query, orgID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("weekly instructor counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var instructorID string
		var n int
		if err := rows.Scan(&instructorID, &n); err != nil {
			return nil, fmt.Errorf("scan weekly count: %w", err)
		}
		counts[instructorID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("weekly instructor counts: %w", err)
	}
	return counts, nil
}

// ListRecentByStudent returns the student's most recent assignments,
// newest first, bounded by limit.
func (r *AssignmentRepository) ListRecentByStudent(ctx context.Context, orgID, studentID string, limit int) ([]models.Assignment, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE org_id = $1 AND student_id = $2 AND status NOT IN ('cancelled') ORDER BY start_at DESC LIMIT %d", assignmentColumns, limit)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, orgID, studentID); err != nil {
		return nil, fmt.Errorf("list recent assignments by student: %w", err)
	}
	return assignments, nil
}

// ListByAirportWindow returns confirmed or pending assignments at an
// airport starting within [from, to).
func (r *AssignmentRepository) ListByAirportWindow(ctx context.Context, orgID, airport string, from, to time.Time) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE org_id = $1 AND airport = $2 AND start_at >= $3 AND start_at < $4 AND status IN ('confirmed', 'pending_confirm') ORDER BY start_at ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, orgID, strings.ToUpper(airport), from, to); err != nil {
		return nil, fmt.Errorf("list assignments by airport window: %w", err)
	}
	return assignments, nil
}

// ListByPersonWindow returns confirmed or pending assignments referencing
// the person as instructor or student whose window intersects [from, to).
func (r *AssignmentRepository) ListByPersonWindow(ctx context.Context, orgID, personID string, from, to time.Time) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE org_id = $1 AND (instructor_id = $2 OR student_id = $2) AND start_at < $4 AND end_at > $3 AND status IN ('confirmed', 'pending_confirm') ORDER BY start_at ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, orgID, personID, from, to); err != nil {
		return nil, fmt.Errorf("list assignments by person window: %w", err)
	}
	return assignments, nil
}

// ListFutureByAircraft returns confirmed or pending assignments on the
// aircraft starting at or after now.
func (r *AssignmentRepository) ListFutureByAircraft(ctx context.Context, orgID, aircraftID string, now time.Time) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE org_id = $1 AND aircraft_id = $2 AND start_at >= $3 AND status IN ('confirmed', 'pending_confirm') ORDER BY start_at ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, orgID, aircraftID, now); err != nil {
		return nil, fmt.Errorf("list future assignments by aircraft: %w", err)
	}
	return assignments, nil
}
