package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline-ops/sortie-core/internal/models"
)

func TestAlternativeRepositoryCreateBatchWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlternativeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO alternative_solutions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO alternative_solutions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	alternatives := []models.AlternativeSolution{
		{OrgID: "org1", AssignmentID: "a1", EventID: "e1", StudentID: "s1", InstructorID: "i1", AircraftID: "ac1", LessonID: "l1", Airport: "EDDH", StartAt: now, EndAt: now.Add(time.Hour), TotalScore: 0.81},
		{OrgID: "org1", AssignmentID: "a1", EventID: "e1", StudentID: "s1", InstructorID: "i2", AircraftID: "ac1", LessonID: "l1", Airport: "EDDH", StartAt: now, EndAt: now.Add(time.Hour), TotalScore: 0.64},
	}
	require.NoError(t, repo.CreateBatchWithTx(context.Background(), tx, alternatives))
	require.NoError(t, tx.Commit())

	assert.NotEmpty(t, alternatives[0].ID)
	assert.Equal(t, models.AlternativeStatusPending, alternatives[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlternativeRepositoryListByAssignmentOrdersByScore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlternativeRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "org_id", "assignment_id", "event_id", "student_id", "instructor_id", "aircraft_id", "lesson_id", "airport", "start_at", "end_at", "total_score", "breakdown", "status", "created_at", "updated_at"}).
		AddRow("alt1", "org1", "a1", "e1", "s1", "i1", "ac1", "l1", "EDDH", now, now.Add(time.Hour), 0.9, []byte(`{}`), "pending", now, now).
		AddRow("alt2", "org1", "a1", "e1", "s1", "i2", "ac1", "l1", "EDDH", now, now.Add(time.Hour), 0.7, []byte(`{}`), "pending", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM alternative_solutions WHERE assignment_id = $1 ORDER BY total_score DESC, created_at ASC")).
		WithArgs("a1").
		WillReturnRows(rows)

	list, err := repo.ListByAssignment(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.GreaterOrEqual(t, list[0].TotalScore, list[1].TotalScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlternativeRepositoryRejectSiblingsWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlternativeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alternative_solutions SET status = 'rejected'")).
		WithArgs(sqlmock.AnyArg(), "a1", "alt1").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.RejectSiblingsWithTx(context.Background(), tx, "a1", "alt1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
