package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func assignmentRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "org_id", "student_id", "instructor_id", "aircraft_id", "lesson_id", "airport", "start_at", "end_at", "status", "created_at", "updated_at"}).
		AddRow("a1", "org1", "s1", "i1", "ac1", "l1", "EDDH", now, now.Add(time.Hour), "confirmed", now, now)
}

func TestAssignmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE org_id = $1 AND instructor_id = $2 AND status IN ($3, $4) ORDER BY start_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("org1", "i1", models.AssignmentStatusConfirmed, models.AssignmentStatusPendingConfirm).
		WillReturnRows(assignmentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE org_id = $1 AND instructor_id = $2 AND status IN ($3, $4)")).
		WithArgs("org1", "i1", models.AssignmentStatusConfirmed, models.AssignmentStatusPendingConfirm).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.AssignmentFilter{
		OrgID:        "org1",
		InstructorID: "i1",
		Statuses:     []models.AssignmentStatus{models.AssignmentStatusConfirmed, models.AssignmentStatusPendingConfirm},
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{
		OrgID:        "org1",
		StudentID:    "s1",
		InstructorID: "i1",
		AircraftID:   "ac1",
		LessonID:     "l1",
		Airport:      "eddh",
		StartAt:      time.Now().UTC(),
		EndAt:        time.Now().UTC().Add(time.Hour),
		Status:       models.AssignmentStatusProposed,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "EDDH", a.Airport, "airport codes are normalised")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFutureByAircraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE org_id = $1 AND aircraft_id = $2 AND start_at >= $3 AND status IN ('confirmed', 'pending_confirm') ORDER BY start_at ASC")).
		WithArgs("org1", "ac1", now).
		WillReturnRows(assignmentRows())

	list, err := repo.ListFutureByAircraft(context.Background(), "org1", "ac1", now)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryWeeklyInstructorCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.Add(7 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{"instructor_id", "n"}).
		AddRow("i1", 4).
		AddRow("i2", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT instructor_id, COUNT(*) AS n FROM assignments")).
		WithArgs("org1", weekStart, weekEnd).
		WillReturnRows(rows)

	counts, err := repo.WeeklyInstructorCounts(context.Background(), "org1", weekStart, weekEnd)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"i1": 4, "i2": 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE assignments SET status").
		WithArgs(models.AssignmentStatusPendingConfirm, sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := repo.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusWithTx(context.Background(), tx, "a1", models.AssignmentStatusPendingConfirm))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
