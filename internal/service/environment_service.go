package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

type environmentStore interface {
	Latest(ctx context.Context, orgID string) (*models.EnvironmentSnapshot, error)
	Store(ctx context.Context, snapshot *models.EnvironmentSnapshot) error
}

// EnvironmentService ingests snapshots from the weather/NOTAM/traffic feed
// and serves the latest picture to the engines.
type EnvironmentService struct {
	store     environmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnvironmentService wires the snapshot store.
func NewEnvironmentService(store environmentStore, validate *validator.Validate, logger *zap.Logger) *EnvironmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnvironmentService{store: store, validator: validate, logger: logger}
}

// Ingest replaces the organization's snapshot. A snapshot is whole or
// nothing; partial airport updates are not supported.
func (s *EnvironmentService) Ingest(ctx context.Context, orgID string, payload dto.SnapshotPayload) (*models.EnvironmentSnapshot, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot payload")
	}
	takenAt := payload.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}
	snapshot := &models.EnvironmentSnapshot{
		OrgID:    orgID,
		TakenAt:  takenAt,
		Airports: payload.Airports,
	}
	if err := s.store.Store(ctx, snapshot); err != nil {
		return nil, err
	}
	s.logger.Info("environment snapshot ingested",
		zap.String("org_id", orgID),
		zap.Int("airports", len(snapshot.Airports)),
		zap.Time("taken_at", snapshot.TakenAt))
	return snapshot, nil
}

// Latest returns the current snapshot for the organization.
func (s *EnvironmentService) Latest(ctx context.Context, orgID string) (*models.EnvironmentSnapshot, error) {
	return s.store.Latest(ctx, orgID)
}
