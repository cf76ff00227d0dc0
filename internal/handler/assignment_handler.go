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

type assignmentManager interface {
	Create(ctx context.Context, orgID string, req dto.CreateAssignmentRequest) (*models.Assignment, *models.FeasibilityReport, error)
	List(ctx context.Context, orgID string, query dto.AssignmentQuery) ([]models.Assignment, *models.Pagination, error)
	Get(ctx context.Context, orgID, id string) (*models.Assignment, error)
	Confirm(ctx context.Context, orgID, id string) (*models.Assignment, error)
	Cancel(ctx context.Context, orgID, id string) (*models.Assignment, error)
	Complete(ctx context.Context, orgID, id string) (*models.Assignment, error)
}

// AssignmentHandler exposes sortie lifecycle endpoints.
type AssignmentHandler struct {
	service assignmentManager
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

type createAssignmentResponse struct {
	Assignment *models.Assignment        `json:"assignment"`
	Report     *models.FeasibilityReport `json:"feasibility"`
}

// Create godoc
// @Summary Propose a new sortie
// @Description The candidate must pass all blocking constraints; the feasibility report is returned either way.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, report, err := h.service.Create(c.Request.Context(), orgFromContext(c), req)
	if err != nil {
		if report != nil {
			response.JSON(c, http.StatusConflict, createAssignmentResponse{Report: report}, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, createAssignmentResponse{Assignment: assignment, Report: report})
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param status query string false "Comma-separated statuses"
// @Param from query string false "RFC3339 window start"
// @Param to query string false "RFC3339 window end"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var query dto.AssignmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), orgFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get one assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), orgFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Confirm godoc
// @Summary Confirm a proposed or pending sortie
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/confirm [post]
func (h *AssignmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// Cancel godoc
// @Summary Cancel a sortie
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/cancel [post]
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// Complete godoc
// @Summary Complete a flown sortie
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/complete [post]
func (h *AssignmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

func (h *AssignmentHandler) transition(c *gin.Context, apply func(ctx context.Context, orgID, id string) (*models.Assignment, error)) {
	assignment, err := apply(c.Request.Context(), orgFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
