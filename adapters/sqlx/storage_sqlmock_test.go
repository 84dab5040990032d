package sqlx_test

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "econledger/adapters/sqlx"
	"econledger/core"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func TestSQLMock_Get(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT balance FROM accounts`).
		WithArgs(core.Name("notch")).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(250))

	balance, err := store.Get(context.Background(), "notch")
	require.NoError(t, err)
	require.Equal(t, int64(250), balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Get_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT balance FROM accounts`).
		WithArgs(core.Name("ghost")).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Set_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(core.Name("notch")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(core.Name("notch"), int64(100), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Set(context.Background(), "notch", 100))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Set_Update(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(core.Name("notch")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(int64(75), sqlmock.AnyArg(), core.Name("notch")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Set(context.Background(), "notch", 75))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Set_Negative(t *testing.T) {
	store, _, cleanup := newMockStore(t)
	defer cleanup()

	err := store.Set(context.Background(), "notch", -1)
	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestSQLMock_All(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT name, balance FROM accounts`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "balance"}).
			AddRow("alice", 10).
			AddRow("bob", 20))

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[core.Name]int64{"alice": 10, "bob": 20}, all)
	require.NoError(t, mock.ExpectationsWereMet())
}
