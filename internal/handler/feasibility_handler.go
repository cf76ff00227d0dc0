package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/dto"
	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/internal/service"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
	"github.com/flightline-ops/sortie-core/pkg/response"
)

type feasibilityChecker interface {
	CheckFeasibility(ctx context.Context, orgID string, candidate dto.SortieCandidate) (*models.FeasibilityReport, error)
}

// FeasibilityHandler exposes the constraint-check endpoint.
type FeasibilityHandler struct {
	service feasibilityChecker
	metrics *service.MetricsService
}

// NewFeasibilityHandler constructs the handler.
func NewFeasibilityHandler(svc *service.FeasibilityService, metrics *service.MetricsService) *FeasibilityHandler {
	return &FeasibilityHandler{service: svc, metrics: metrics}
}

// Check godoc
// @Summary Check feasibility of a candidate sortie
// @Description Evaluates all applicable constraints for the candidate. Constraint failures are reported in the body, not as HTTP errors.
// @Tags Feasibility
// @Accept json
// @Produce json
// @Param payload body dto.SortieCandidate true "Candidate sortie"
// @Success 200 {object} response.Envelope
// @Router /feasibility/check [post]
func (h *FeasibilityHandler) Check(c *gin.Context) {
	var candidate dto.SortieCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid candidate payload"))
		return
	}

	start := time.Now()
	report, err := h.service.CheckFeasibility(c.Request.Context(), orgFromContext(c), candidate)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveFeasibilityCheck(report.Feasible, time.Since(start))
	response.JSON(c, http.StatusOK, report, nil)
}
