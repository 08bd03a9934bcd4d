package iostore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hydrolab/hmpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	// Second run is a no-op
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 2))

	// A migrated database is usable by the store
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	run, results := sampleRun("M", time.Now())
	_, err = store.RecordRun(run, results)
	require.NoError(t, err)
}

func TestMigrationDirs(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		entries, err := migrationsFS.ReadDir(migrationDir(backend))
		require.NoError(t, err)
		assert.Len(t, entries, 4, "%s should have up and down files for both versions", backend)
	}
}
