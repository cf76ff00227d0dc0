package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/service"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
	"github.com/flightline-ops/sortie-core/pkg/response"
)

type disruptionHandlerService interface {
	HandleDisruption(ctx context.Context, orgID string, req dto.DisruptionRequest) (*dto.DisruptionResult, error)
}

// DisruptionHandler exposes the replanning trigger endpoint.
type DisruptionHandler struct {
	service disruptionHandlerService
	metrics *service.MetricsService
}

// NewDisruptionHandler constructs the handler.
func NewDisruptionHandler(svc *service.DisruptionService, metrics *service.MetricsService) *DisruptionHandler {
	return &DisruptionHandler{service: svc, metrics: metrics}
}

// Report godoc
// @Summary Report a disruption and trigger replanning
// @Description Parks affected assignments pending confirmation and generates ranked alternatives. Per-assignment failures are reported in the outcome list.
// @Tags Disruptions
// @Accept json
// @Produce json
// @Param payload body dto.DisruptionRequest true "Disruption event"
// @Success 200 {object} response.Envelope
// @Router /disruptions [post]
func (h *DisruptionHandler) Report(c *gin.Context) {
	var req dto.DisruptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid disruption payload"))
		return
	}

	result, err := h.service.HandleDisruption(c.Request.Context(), orgFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveDisruption(req.Type, result.AlternativesGenerated)
	response.JSON(c, http.StatusOK, result, nil)
}
