package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/internal/service"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
	"github.com/flightline-ops/sortie-core/pkg/response"
)

type environmentManager interface {
	Ingest(ctx context.Context, orgID string, payload dto.SnapshotPayload) (*models.EnvironmentSnapshot, error)
	Latest(ctx context.Context, orgID string) (*models.EnvironmentSnapshot, error)
}

// EnvironmentHandler exposes snapshot ingestion and retrieval.
type EnvironmentHandler struct {
	service environmentManager
}

// NewEnvironmentHandler constructs the handler.
func NewEnvironmentHandler(svc *service.EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{service: svc}
}

// Put godoc
// @Summary Replace the environment snapshot
// @Description Ingests the latest weather/NOTAM/traffic picture from the external feed. Snapshots are whole-for-whole replacements.
// @Tags Environment
// @Accept json
// @Produce json
// @Param payload body dto.SnapshotPayload true "Environment snapshot"
// @Success 200 {object} response.Envelope
// @Router /environment [put]
func (h *EnvironmentHandler) Put(c *gin.Context) {
	var payload dto.SnapshotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid snapshot payload"))
		return
	}
	snapshot, err := h.service.Ingest(c.Request.Context(), orgFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"takenAt": snapshot.TakenAt, "airports": len(snapshot.Airports)}, nil)
}

// Get godoc
// @Summary Get the current environment snapshot
// @Tags Environment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /environment [get]
func (h *EnvironmentHandler) Get(c *gin.Context) {
	snapshot, err := h.service.Latest(c.Request.Context(), orgFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
