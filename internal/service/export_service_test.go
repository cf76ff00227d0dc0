package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/models"
	"github.com/flightline-ops/sortie-core/pkg/storage"
)

type exportAssignmentsStub struct {
	rows []models.Assignment
}

func (s *exportAssignmentsStub) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	return s.rows, len(s.rows), nil
}

type memoryStorage struct {
	files map[string][]byte
}

func (s *memoryStorage) Save(filename string, data []byte) (string, error) {
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.files[filename] = data
	return filename, nil
}

func (s *memoryStorage) Open(filename string) (*os.File, error) { return nil, os.ErrNotExist }
func (s *memoryStorage) Delete(filename string) error           { return nil }
func (s *memoryStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	return nil, nil
}

func TestGenerateDayBoardCSV(t *testing.T) {
	rows := []models.Assignment{confirmedAssignment("assignment-1")}
	store := &memoryStorage{}
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)

	svc := NewExportService(&exportAssignmentsStub{rows: rows}, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)

	result, err := svc.GenerateDayBoard(context.Background(), "org-1", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), ExportFormatCSV)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/export/"))
	assert.Equal(t, ExportFormatCSV, result.Format)

	payload, ok := store.files[result.RelativePath]
	require.True(t, ok)
	content := string(payload)
	assert.Contains(t, content, "Airport")
	assert.Contains(t, content, "KSFO")
	assert.Contains(t, content, "student-1")

	orgID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "org-1", orgID)
	assert.Equal(t, result.RelativePath, relPath)
}

func TestGenerateDayBoardRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&exportAssignmentsStub{}, &memoryStorage{}, storage.NewSignedURLSigner("s", time.Hour), ExportConfig{}, nil, nil, nil)

	_, err := svc.GenerateDayBoard(context.Background(), "org-1", time.Now(), ExportFormat("xlsx"))
	require.Error(t, err)
}

func TestBuildDayBoardDatasetColumns(t *testing.T) {
	dataset := buildDayBoardDataset([]models.Assignment{confirmedAssignment("assignment-1")})
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "KSFO", dataset.Rows[0]["Airport"])
	assert.Equal(t, "confirmed", dataset.Rows[0]["Status"])
	assert.Equal(t, "14:00", dataset.Rows[0]["Start (UTC)"])
}
