package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flightline-ops/sortie-core/internal/models"
)

const alternativeColumns = "id, org_id, assignment_id, event_id, student_id, instructor_id, aircraft_id, lesson_id, airport, start_at, end_at, total_score, breakdown, status, created_at, updated_at"

// AlternativeRepository persists generated alternative solutions.
type AlternativeRepository struct {
	db *sqlx.DB
}

// NewAlternativeRepository creates a new alternative repository.
func NewAlternativeRepository(db *sqlx.DB) *AlternativeRepository {
	return &AlternativeRepository{db: db}
}

// CreateBatchWithTx inserts alternatives inside an existing transaction so
// they become visible atomically with the assignment status transition.
func (r *AlternativeRepository) CreateBatchWithTx(ctx context.Context, exec sqlx.ExtContext, alternatives []models.AlternativeSolution) error {
	now := time.Now().UTC()
	for i := range alternatives {
		alt := alternatives[i]
		if alt.ID == "" {
			alt.ID = uuid.NewString()
		}
		if alt.Status == "" {
			alt.Status = models.AlternativeStatusPending
		}
		if alt.CreatedAt.IsZero() {
			alt.CreatedAt = now
		}
		alt.UpdatedAt = now

		const query = `INSERT INTO alternative_solutions (id, org_id, assignment_id, event_id, student_id, instructor_id, aircraft_id, lesson_id, airport, start_at, end_at, total_score, breakdown, status, created_at, updated_at) VALUES (:id, :org_id, :assignment_id, :event_id, :student_id, :instructor_id, :aircraft_id, :lesson_id, :airport, :start_at, :end_at, :total_score, :breakdown, :status, :created_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, exec, query, &alt); err != nil {
			return fmt.Errorf("insert alternative: %w", err)
		}
		alternatives[i] = alt
	}
	return nil
}

// ListByAssignment returns alternatives for an assignment ordered by
// descending total score.
func (r *AlternativeRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.AlternativeSolution, error) {
	query := fmt.Sprintf("SELECT %s FROM alternative_solutions WHERE assignment_id = $1 ORDER BY total_score DESC, created_at ASC", alternativeColumns)
	var alternatives []models.AlternativeSolution
	if err := r.db.SelectContext(ctx, &alternatives, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list alternatives by assignment: %w", err)
	}
	return alternatives, nil
}

// FindByID loads an alternative by id.
func (r *AlternativeRepository) FindByID(ctx context.Context, id string) (*models.AlternativeSolution, error) {
	query := fmt.Sprintf("SELECT %s FROM alternative_solutions WHERE id = $1", alternativeColumns)
	var alt models.AlternativeSolution
	if err := r.db.GetContext(ctx, &alt, query, id); err != nil {
		return nil, err
	}
	return &alt, nil
}

// UpdateStatusWithTx changes one alternative's resolution status.
func (r *AlternativeRepository) UpdateStatusWithTx(ctx context.Context, exec sqlx.ExtContext, id string, status models.AlternativeStatus) error {
	if _, err := exec.ExecContext(ctx, `UPDATE alternative_solutions SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update alternative status: %w", err)
	}
	return nil
}

// RejectSiblingsWithTx marks every other pending alternative for the
// assignment rejected.
func (r *AlternativeRepository) RejectSiblingsWithTx(ctx context.Context, exec sqlx.ExtContext, assignmentID, exceptID string) error {
	if _, err := exec.ExecContext(ctx, `UPDATE alternative_solutions SET status = 'rejected', updated_at = $1 WHERE assignment_id = $2 AND id <> $3 AND status = 'pending'`, time.Now().UTC(), assignmentID, exceptID); err != nil {
		return fmt.Errorf("reject sibling alternatives: %w", err)
	}
	return nil
}

// CountPendingByAssignment returns how many alternatives remain unresolved.
func (r *AlternativeRepository) CountPendingByAssignment(ctx context.Context, assignmentID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM alternative_solutions WHERE assignment_id = $1 AND status = 'pending'`, assignmentID); err != nil {
		return 0, fmt.Errorf("count pending alternatives: %w", err)
	}
	return n, nil
}
