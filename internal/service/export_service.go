package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flightline-ops/sortie-core/internal/models"
	appErrors "github.com/flightline-ops/sortie-core/pkg/errors"
	"github.com/flightline-ops/sortie-core/pkg/export"
	"github.com/flightline-ops/sortie-core/pkg/storage"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportAssignmentReader interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders day-board exports and persists the files behind
// signed download URLs.
type ExportService struct {
	assignments exportAssignmentReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(assignments exportAssignmentReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		assignments: assignments,
		storage:     store,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// GenerateDayBoard renders the full sortie board for one UTC day and
// stores the file, returning a signed download URL.
func (s *ExportService) GenerateDayBoard(ctx context.Context, orgID string, day time.Time, format ExportFormat) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	dayStart := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	filter := models.AssignmentFilter{
		OrgID:    orgID,
		From:     &dayStart,
		To:       &dayEnd,
		PageSize: 100,
		SortBy:   "start_at",
	}

	var rows []models.Assignment
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.assignments.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
		if len(rows) >= total || len(batch) == 0 {
			break
		}
	}

	dataset := buildDayBoardDataset(rows)
	title := fmt.Sprintf("Sortie Board %s", dayStart.Format("2006-01-02"))

	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render export")
	}

	filename := fmt.Sprintf("dayboard_%s_%s_%s.%s", sanitizeFilename(orgID), dayStart.Format("20060102"), time.Now().UTC().Format("150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "store export file")
	}

	token, expiresAt, err := s.signer.Generate(orgID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign export url")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("day board exported",
		zap.String("org_id", orgID),
		zap.String("file", relPath),
		zap.Int("rows", len(rows)),
		zap.String("format", string(format)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (orgID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildDayBoardDataset(rows []models.Assignment) export.Dataset {
	dataRows := make([]map[string]string, 0, len(rows))
	for _, a := range rows {
		dataRows = append(dataRows, map[string]string{
			"Start (UTC)": a.StartAt.UTC().Format("15:04"),
			"End (UTC)":   a.EndAt.UTC().Format("15:04"),
			"Airport":     a.Airport,
			"Student":     a.StudentID,
			"Instructor":  a.InstructorID,
			"Aircraft":    a.AircraftID,
			"Lesson":      a.LessonID,
			"Status":      string(a.Status),
		})
	}
	return export.Dataset{
		Headers: []string{"Start (UTC)", "End (UTC)", "Airport", "Student", "Instructor", "Aircraft", "Lesson", "Status"},
		Rows:    dataRows,
	}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
