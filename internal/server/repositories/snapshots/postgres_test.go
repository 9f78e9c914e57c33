package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/stretchr/testify/require"
)

const (
	selectQ          = `(?s)^SELECT\s+data,\s*last_sync\s+FROM\s+snapshots\s+WHERE\s+user_id\s*=\s*\$1$`
	selectForUpdateQ = `(?s)^SELECT\s+data,\s*last_sync\s+FROM\s+snapshots\s+WHERE\s+user_id\s*=\s*\$1\s+FOR\s+UPDATE$`
	upsertQ          = `(?s)INSERT\s+INTO\s+snapshots\s*\(user_id,\s*data,\s*last_sync,\s*updated_at\).*ON\s+CONFLICT\s*\(user_id\)`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func appDataJSON(t *testing.T, d models.AppData) []byte {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	return b
}

func TestPostgresGet_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	data := models.AppData{PrayerSessions: []models.PrayerSession{{ID: "p1", Date: 10}}}
	mock.ExpectQuery(selectQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"data", "last_sync"}).AddRow(appDataJSON(t, data), int64(42)))

	got, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, int64(42), got.LastSync)
	require.Equal(t, "p1", got.PrayerSessions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGet_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "u1")
	require.ErrorContains(t, err, "db error: db down")
}

func TestPostgresPut(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	snap := &models.CloudSnapshot{LastSync: 7}
	mock.ExpectExec(upsertQ).WithArgs("u1", appDataJSON(t, snap.AppData), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), "u1", snap))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_LocksAndWritesInTx(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"data", "last_sync"}).AddRow(appDataJSON(t, models.AppData{}), int64(5)))
	mock.ExpectExec(upsertQ).WithArgs("u1", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), "u1", func(s *models.CloudSnapshot) error {
		s.GameScores = append(s.GameScores, models.GameScore{ID: "g1", Timestamp: 1})
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_MissingRowStartsEmpty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(upsertQ).WithArgs("u1", sqlmock.AnyArg(), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seen *models.CloudSnapshot
	err := repo.Update(context.Background(), "u1", func(s *models.CloudSnapshot) error {
		seen = s
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, seen)
	require.Zero(t, seen.RecordCount())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_FnErrorRollsBack(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdateQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.Update(context.Background(), "u1", func(*models.CloudSnapshot) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
