package database

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

func TestRunInTx(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE t SET a = 1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE t SET a = 1")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		want := fmt.Errorf("bad write")
		err := RunInTx(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
			return want
		})
		require.ErrorIs(t, err, want)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrate(t *testing.T) {
	migrations := fstest.MapFS{
		"migrations/0002_second.sql": &fstest.MapFile{Data: []byte("CREATE TABLE IF NOT EXISTS second (id INT);")},
		"migrations/0001_first.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE IF NOT EXISTS first (id INT);")},
	}

	t.Run("applies files in lexical order", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS first").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS second").WillReturnResult(sqlmock.NewResult(0, 0))

		err := Migrate(context.Background(), db, migrations)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on the first failing file", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS first").
			WillReturnError(fmt.Errorf("syntax error"))

		err := Migrate(context.Background(), db, migrations)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0001_first.sql")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
