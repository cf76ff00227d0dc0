package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flightline-ops/sortie-core/internal/service"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
	"github.com/flightline-ops/sortie-core/pkg/response"
)

// ExportHandler exposes day-board export generation and download.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Generate godoc
// @Summary Export the sortie board for one day
// @Description Renders the full board as CSV or PDF and returns a signed download URL.
// @Tags Export
// @Produce json
// @Param date query string true "UTC day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {object} response.Envelope
// @Router /export/dayboard [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.service.GenerateDayBoard(c.Request.Context(), orgFromContext(c), day, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":       result.URL,
		"format":    result.Format,
		"expiresAt": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a generated export
// @Description Streams the file referenced by a signed token. Tokens expire with the configured TTL.
// @Tags Export
// @Param token path string true "Signed download token"
// @Success 200
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.service.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}

	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := "text/csv"
	if filepath.Ext(relPath) == ".pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
