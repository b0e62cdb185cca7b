package store_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
)

func setupMockStore(t *testing.T, driver string) (*sql.DB, sqlmock.Sqlmock, *store.Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	st := store.New(db, driver, store.Options{BusyRetries: 3})
	return db, mock, st
}

func TestReadSubject_PostgresPlaceholders(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverPostgres)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE name = $1")).
		WithArgs("SUBJ01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n_points_per_day", "is_finished", "created_at", "updated_at"}).
			AddRow(7, "SUBJ01", 17280, 1, "2024-05-01T10:00:00Z", "2024-05-02T10:00:00Z"))

	subject, err := st.ReadSubject(context.Background(), "SUBJ01")

	require.NoError(t, err)
	assert.Equal(t, int64(7), subject.ID)
	assert.Equal(t, 17280, subject.NPointsPerDay)
	assert.True(t, subject.IsFinished)
	assert.Equal(t, 2024, subject.UpdatedAt.Year())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadSubject_NotFound(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverPostgres)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE name = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n_points_per_day", "is_finished", "created_at", "updated_at"}))

	_, err := st.ReadSubject(context.Background(), "ghost")

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadSubject_QueryErrorIsNotNotFound(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverSQLite)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE name = ?")).
		WithArgs("SUBJ01").
		WillReturnError(errors.New("disk I/O error"))

	_, err := st.ReadSubject(context.Background(), "SUBJ01")

	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFinished_ZeroRowsIsNotFound(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverPostgres)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET is_finished = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(1, sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.SetFinished(context.Background(), 42, true)

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSleepTime_RetriesWhileBusy(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverSQLite)
	defer db.Close()

	query := regexp.QuoteMeta("UPDATE sleep_times SET onset = ?")
	mock.ExpectExec(query).WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	mock.ExpectExec(query).WillReturnError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpdateSleepTime(context.Background(), 3, sleep.Placeholder())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSleepTime_GivesUpAfterRetryBudget(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverSQLite)
	defer db.Close()

	query := regexp.QuoteMeta("UPDATE sleep_times SET onset = ?")
	for i := 0; i < 3; i++ {
		mock.ExpectExec(query).WillReturnError(errors.New("database is locked"))
	}

	err := st.UpdateSleepTime(context.Background(), 3, sleep.Placeholder())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDayFlags_ExecErrorPropagates(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverPostgres)
	defer db.Close()

	reviewed := true
	mock.ExpectExec(regexp.QuoteMeta("UPDATE days SET is_reviewed = $1 WHERE id = $2")).
		WithArgs(1, int64(5)).
		WillReturnError(errors.New("connection reset"))

	err := st.UpdateDayFlags(context.Background(), 5, store.DayFlags{IsReviewed: &reviewed})

	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubject_PostgresDayConflict(t *testing.T) {
	db, mock, st := setupMockStore(t, store.DriverPostgres)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subjects (name, n_points_per_day, is_finished, created_at, updated_at) VALUES ($1, $2, 0, $3, $4) RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO days")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "days_subject_id_date_key"})
	mock.ExpectRollback()

	_, err := st.CreateSubject(context.Background(), &store.NewSubject{
		Name:          "SUBJ01",
		NPointsPerDay: 24,
		Days:          []store.NewDay{{Date: naive(1, 0, 0)}},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDuplicateDay))
	assert.NoError(t, mock.ExpectationsWereMet())
}
