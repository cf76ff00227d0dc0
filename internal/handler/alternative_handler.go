package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/internal/service"
	"github.com/flightline-ops/sortie-core/pkg/response"
)

type alternativeResolver interface {
	List(ctx context.Context, orgID, assignmentID string) ([]models.AlternativeSolution, error)
	Accept(ctx context.Context, orgID, alternativeID string) (*models.Assignment, error)
	Reject(ctx context.Context, orgID, alternativeID string) error
}

// AlternativeHandler exposes alternative listing and resolution endpoints.
type AlternativeHandler struct {
	service alternativeResolver
}

// NewAlternativeHandler constructs the handler.
func NewAlternativeHandler(svc *service.AlternativeService) *AlternativeHandler {
	return &AlternativeHandler{service: svc}
}

// ListForAssignment godoc
// @Summary List alternatives for an assignment
// @Description Returns generated alternatives best score first.
// @Tags Alternatives
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/alternatives [get]
func (h *AlternativeHandler) ListForAssignment(c *gin.Context) {
	alternatives, err := h.service.List(c.Request.Context(), orgFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alternatives, nil)
}

// Accept godoc
// @Summary Accept an alternative
// @Description Applies the alternative to its assignment, confirms it and rejects the remaining siblings.
// @Tags Alternatives
// @Produce json
// @Param id path string true "Alternative ID"
// @Success 200 {object} response.Envelope
// @Router /alternatives/{id}/accept [post]
func (h *AlternativeHandler) Accept(c *gin.Context) {
	assignment, err := h.service.Accept(c.Request.Context(), orgFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Reject godoc
// @Summary Reject an alternative
// @Description Rejecting the last pending alternative cancels the parked assignment.
// @Tags Alternatives
// @Param id path string true "Alternative ID"
// @Success 204
// @Router /alternatives/{id}/reject [post]
func (h *AlternativeHandler) Reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), orgFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
