package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, nil)
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv_entries WHERE key = \$1`).
			WithArgs(ports.KeyFolders).
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, found, err := store.Get(ctx, ports.KeyFolders)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("GetFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv_entries WHERE key = \$1`).
			WithArgs(ports.KeyFolders).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

		got, found, err := store.Get(ctx, ports.KeyFolders)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("GetError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv_entries`).
			WithArgs(ports.KeyFolders).
			WillReturnError(errors.New("connection reset"))

		_, _, err := store.Get(ctx, ports.KeyFolders)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("SetRecordsVersion", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO kv_entries`).
			WithArgs(ports.KeyFolders, []byte(`[{}]`), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))

		require.NoError(t, store.Set(ctx, ports.KeyFolders, []byte(`[{}]`)))
		assert.Equal(t, int64(4), store.seen[ports.KeyFolders])
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PollDetectsForeignWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, nil)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT key, version FROM kv_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "version"}).
			AddRow(ports.KeyEditedDomains, 1).
			AddRow(ports.KeyFolders, 1))
	changed, err := store.pollOnce(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, changed)

	mock.ExpectQuery(`SELECT key, version FROM kv_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "version"}).
			AddRow(ports.KeyEditedDomains, 2).
			AddRow(ports.KeyFolders, 1).
			AddRow(ports.KeyUsers, 1))
	changed, err = store.pollOnce(ctx, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ports.KeyEditedDomains, ports.KeyUsers}, changed)

	// A local write is already announced and must not be reported again.
	mock.ExpectQuery(`INSERT INTO kv_entries`).
		WithArgs(ports.KeyFolders, []byte(`[]`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
	require.NoError(t, store.Set(ctx, ports.KeyFolders, []byte(`[]`)))

	mock.ExpectQuery(`SELECT key, version FROM kv_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "version"}).
			AddRow(ports.KeyEditedDomains, 2).
			AddRow(ports.KeyFolders, 2).
			AddRow(ports.KeyUsers, 1))
	changed, err = store.pollOnce(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, changed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
