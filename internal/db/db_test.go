package db

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/kv/kvtest"
	"github.com/asteroid-belt/vidtally/internal/log"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := New(Config{Path: dbPath, Debug: true})
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	})

	return db
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "vidtally.db")

	db, err := New(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
	}()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	if db.Path() != dbPath {
		t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
	}

	version, err := db.GetSyncMeta(models.SyncMetaSchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(SchemaVersion), version)
}

func TestNew_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidtally.db")

	db, err := New(DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, db.SetSyncMeta(models.SyncMetaSchemaVersion, strconv.Itoa(SchemaVersion+1)))
	require.NoError(t, db.Close())

	_, err = New(DefaultConfig(path))
	require.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestNew_KeepsExistingMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidtally.db")

	db, err := New(DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, db.SetSyncMeta(models.SyncMetaAppVersion, "v1.2.0"))
	require.NoError(t, db.Close())

	reopened, err := New(DefaultConfig(path))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetSyncMeta(models.SyncMetaAppVersion)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", got)
}

func TestKVStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		return testDB(t)
	})
}

func TestKeys_PrefixIsLiteral(t *testing.T) {
	db := testDB(t)

	// LIKE wildcards in the prefix must not match arbitrary characters.
	require.NoError(t, db.Set("progress_x", []byte(`{}`)))
	require.NoError(t, db.Set("progressAx", []byte(`{}`)))

	keys, err := db.Keys("progress_")
	require.NoError(t, err)
	assert.Equal(t, []string{"progress_x"}, keys)
}

func TestGetOrCreateClientID_Stable(t *testing.T) {
	db := testDB(t)

	first, err := db.GetOrCreateClientID()
	require.NoError(t, err)
	assert.Len(t, first, 36)

	second, err := db.GetOrCreateClientID()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, first, db.GetOrCreateTrackingID())
}

func TestGetOrCreateClientID_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidtally.db")

	db, err := New(DefaultConfig(path))
	require.NoError(t, err)
	id, err := db.GetOrCreateClientID()
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := New(DefaultConfig(path))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	again, err := reopened.GetOrCreateClientID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestSyncMeta(t *testing.T) {
	db := testDB(t)

	val, err := db.GetSyncMeta("missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, db.SetSyncMeta(models.SyncMetaAppVersion, "v1.0.0"))
	require.NoError(t, db.SetSyncMeta(models.SyncMetaAppVersion, "v1.1.0"))

	val, err = db.GetSyncMeta(models.SyncMetaAppVersion)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", val)
}

func TestQueryLogGoesToLogFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, log.InitFileOnly(dir, "debug"))

	gormWriter{}.Printf("slow sql %s", "SELECT 1")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, log.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "slow sql SELECT 1")
	assert.Contains(t, string(data), `"component":"db"`)
}
