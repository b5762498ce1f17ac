package storage

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxd/internal/domain"
)

func newMock(t *testing.T) (*MySQLStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStorage(db), mock
}

func TestMySQLStorage_Migrate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(createRunsTable).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createFailuresTable).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStorage_Save(t *testing.T) {
	t.Run("commits the run with its failures", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertRun).WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec(insertFailure).
			WithArgs(int64(7), "TestSub_C", "box", "sub/c.kt", domain.KindMismatch,
				sqlmock.AnyArg(), "OK", "FAIL", "", false).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Save(sampleRun()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a failure row cannot be written", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(insertRun).WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectExec(insertFailure).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := s.Save(sampleRun())
		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLStorage_Load(t *testing.T) {
	t.Run("reads the latest run", func(t *testing.T) {
		s, mock := newMock(t)
		meta, err := json.Marshal(domain.RunResultsMeta{TotalFixtures: 2, FailedFixtures: 1})
		require.NoError(t, err)
		coverage := []byte(`[{"group":"box","root":"/fixtures","found":2,"declared":2}]`)

		mock.ExpectQuery(selectLastRun).
			WillReturnRows(sqlmock.NewRows([]string{"id", "meta", "coverage"}).AddRow(int64(3), meta, coverage))
		mock.ExpectQuery(selectFailures).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{
				"test_name", "group_path", "file_path", "kind", "message", "expected", "actual", "diff", "resolved",
			}).AddRow("TestA", "box", "a.kt", domain.KindError, "boom", nil, "partial", nil, true))

		out, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, 2, out.Meta.TotalFixtures)
		require.Len(t, out.Coverage, 1)
		assert.Equal(t, "box", out.Coverage[0].Group)
		require.Len(t, out.Details, 1)
		assert.Equal(t, "boom", out.Details[0].Message)
		assert.Equal(t, "partial", out.Details[0].Actual)
		assert.Empty(t, out.Details[0].Expected)
		assert.True(t, out.Details[0].Resolved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no stored runs", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(selectLastRun).WillReturnRows(sqlmock.NewRows([]string{"id", "meta", "coverage"}))

		_, err := s.Load()
		assert.ErrorContains(t, err, "no stored runs")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLStorage_SaveOutput(t *testing.T) {
	output := BuildOutput(sampleRun())
	output.Details[0].Resolved = true

	t.Run("replaces the latest run", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectLastRun).
			WillReturnRows(sqlmock.NewRows([]string{"id", "meta", "coverage"}).AddRow(int64(4), []byte("{}"), []byte("[]")))
		mock.ExpectExec(updateRun).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(deleteFailures).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertFailure).
			WithArgs(int64(4), "TestSub_C", "box", "sub/c.kt", domain.KindMismatch,
				sqlmock.AnyArg(), "OK", "FAIL", "", true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.SaveOutput(output))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts when nothing is stored", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectLastRun).WillReturnRows(sqlmock.NewRows([]string{"id", "meta", "coverage"}))
		mock.ExpectExec(insertRun).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(insertFailure).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.SaveOutput(output))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
