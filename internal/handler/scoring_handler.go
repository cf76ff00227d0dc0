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

type candidateScorer interface {
	ScoreAssignment(ctx context.Context, orgID string, candidate dto.SortieCandidate, weights *models.ObjectiveWeights) (*models.ScoreBreakdown, error)
}

// ScoringHandler exposes the objective-scoring endpoint.
type ScoringHandler struct {
	service candidateScorer
	metrics *service.MetricsService
}

// NewScoringHandler constructs the handler.
func NewScoringHandler(svc *service.ScoringService, metrics *service.MetricsService) *ScoringHandler {
	return &ScoringHandler{service: svc, metrics: metrics}
}

// Score godoc
// @Summary Score a candidate sortie
// @Description Computes the six dimension scores and the weighted total. Optional weight overrides must sum to 1.0.
// @Tags Scoring
// @Accept json
// @Produce json
// @Param payload body dto.ScoreRequest true "Candidate and optional weights"
// @Success 200 {object} response.Envelope
// @Router /scoring/score [post]
func (h *ScoringHandler) Score(c *gin.Context) {
	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}

	var weights *models.ObjectiveWeights
	if req.Weights != nil {
		weights = &models.ObjectiveWeights{
			WeatherFit:          req.Weights.WeatherFit,
			InstructorBalance:   req.Weights.InstructorBalance,
			Travel:              req.Weights.Travel,
			AircraftUtilization: req.Weights.AircraftUtilization,
			StudentContinuity:   req.Weights.StudentContinuity,
			CancellationRisk:    req.Weights.CancellationRisk,
		}
	}

	breakdown, err := h.service.ScoreAssignment(c.Request.Context(), orgFromContext(c), req.Candidate, weights)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveScoreRequest()
	response.JSON(c, http.StatusOK, breakdown, nil)
}
