package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flightline-ops/sortie-core/internal/models"
)

// EventRepository persists disruption events for audit and replay.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new disruption event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create stores a disruption event. Events are immutable once written.
func (r *EventRepository) Create(ctx context.Context, event *models.DisruptionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ReportedAt.IsZero() {
		event.ReportedAt = time.Now().UTC()
	}
	event.Airport = strings.ToUpper(event.Airport)

	const query = `INSERT INTO disruption_events (id, org_id, type, entity_id, airport, window_start, window_end, payload, reported_at) VALUES (:id, :org_id, :type, :entity_id, :airport, :window_start, :window_end, :payload, :reported_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create disruption event: %w", err)
	}
	return nil
}

// AuditRepository records audit trail entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores one audit record.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO audit_logs (id, org_id, action, resource, resource_id, details, created_at) VALUES (:id, :org_id, :action, :resource, :resource_id, :details, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
