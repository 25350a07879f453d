package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "multichat.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{"chats", "messages", "settings"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multichat.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Close())

	// Reopening an up-to-date database must not fail.
	db, err = InitDB(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
