package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
)

const snapshotTTL = 6 * time.Hour

// EnvironmentRepository stores the latest weather/NOTAM/traffic snapshot
// per organization in Redis. The feed overwrites the whole snapshot; the
// engines only ever read the most recent one.
type EnvironmentRepository struct {
	client *redis.Client
}

// NewEnvironmentRepository creates a new environment repository.
func NewEnvironmentRepository(client *redis.Client) *EnvironmentRepository {
	return &EnvironmentRepository{client: client}
}

func snapshotKey(orgID string) string {
	return fmt.Sprintf("env:snapshot:%s", orgID)
}

// Latest returns the most recent snapshot for the org. A missing key is
// reported as data-unavailable so callers fall back to neutral scoring.
func (r *EnvironmentRepository) Latest(ctx context.Context, orgID string) (*models.EnvironmentSnapshot, error) {
	raw, err := r.client.Get(ctx, snapshotKey(orgID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrDataUnavailable, "no environment snapshot available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "environment snapshot lookup failed")
	}

	var snapshot models.EnvironmentSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, "environment snapshot corrupt")
	}
	return &snapshot, nil
}

// Store overwrites the org snapshot. Airport codes are normalised to
// upper case so lookups are case-insensitive.
func (r *EnvironmentRepository) Store(ctx context.Context, snapshot *models.EnvironmentSnapshot) error {
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now().UTC()
	}
	normalized := make(map[string]models.AirportConditions, len(snapshot.Airports))
	for code, cond := range snapshot.Airports {
		upper := strings.ToUpper(code)
		cond.Airport = upper
		normalized[upper] = cond
	}
	snapshot.Airports = normalized

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode environment snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(snapshot.OrgID), raw, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("store environment snapshot: %w", err)
	}
	return nil
}
