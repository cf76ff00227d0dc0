package models

import "time"

// Audit action constants recorded by the replanning engine.
const (
	AuditActionDisruptionHandled   = "DISRUPTION_HANDLED"
	AuditActionAlternativeAccepted = "ALTERNATIVE_ACCEPTED"
	AuditActionAlternativeRejected = "ALTERNATIVE_REJECTED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	OrgID      string    `db:"org_id" json:"org_id"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
