package migrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sql/001_create_sessions.up.sql":   {Data: []byte("CREATE TABLE sessions (id TEXT PRIMARY KEY);")},
		"sql/001_create_sessions.down.sql": {Data: []byte("DROP TABLE sessions;")},
		"sql/002_add_points.up.sql":        {Data: []byte("CREATE TABLE points (session_id TEXT, lat REAL);")},
		"sql/002_add_points.down.sql":      {Data: []byte("DROP TABLE points;")},
		"sql/README.md":                    {Data: []byte("ignored")},
	}
}

func newTestMigrator(t *testing.T) (*Migrator, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	provider := NewFSProvider(testFS(), "sql", "", "sqlite")
	return NewMigrator(db, provider, zap.NewNop().Sugar()), db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n))
	return n == 1
}

func TestFSProvider_GetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testFS(), "sql", "", "").GetMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create sessions", migrations[0].Name)
	assert.Contains(t, migrations[1].Down, "DROP TABLE points")
}

func TestMigrator_UpAndDown(t *testing.T) {
	m, db := newTestMigrator(t)

	pending, err := m.GetPendingMigrations()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.MigrateUp())
	v, err := m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, tableExists(t, db, "points"))

	// running again is a no-op
	require.NoError(t, m.MigrateUp())

	require.NoError(t, m.MigrateDown(1))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, tableExists(t, db, "points"))
	assert.True(t, tableExists(t, db, "sessions"))

	require.NoError(t, m.MigrateTo(0))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.False(t, tableExists(t, db, "sessions"))
}

func TestMigrator_DownRequiresLowerTarget(t *testing.T) {
	m, _ := newTestMigrator(t)
	require.NoError(t, m.MigrateTo(1))

	assert.Error(t, m.MigrateDown(1))
}
