package kv_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/kv/kvtest"
)

func TestMemoryStore(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		return kv.NewMemoryStore()
	})
}

func TestBadgerStore(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		s, err := kv.OpenBadgerStore(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestFileStore(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		s, err := kv.OpenFileStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())
		require.NoError(t, err)
		return s
	})
}

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := kv.OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Set("progress_last_watched", []byte(`{"item_id":"abc12345678","position":580}`)))

	reopened, err := kv.OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	got, err := reopened.Get("progress_last_watched")
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_id":"abc12345678","position":580}`, string(got))
}

func TestFileStore_RejectsNonJSON(t *testing.T) {
	s, err := kv.OpenFileStore(filepath.Join(t.TempDir(), "state.json"), zerolog.Nop())
	require.NoError(t, err)

	err = s.Set("usage_daily", []byte("not json"))
	assert.True(t, errors.Is(err, kv.ErrInvalidValue))
}

func TestFileStore_CorruptFileMovedAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	s, err := kv.OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)

	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.Set("usage_daily", []byte(`[]`)))

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestGetJSON_Corrupt(t *testing.T) {
	s := kv.NewMemoryStore()
	require.NoError(t, s.Set("achievements_ledger", []byte("{not json")))

	var out map[string]any
	found, err := kv.GetJSON(s, "achievements_ledger", &out)
	assert.False(t, found)
	assert.True(t, errors.Is(err, kv.ErrCorrupt))
}

func TestFileStore_FailedSaveKeepsCacheInStepWithDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	path := filepath.Join(dir, "state.json")

	s, err := kv.OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Set("usage_daily", []byte(`[{"date":"2026-03-10","minutes":5}]`)))

	// Replace the directory with a plain file so every later save fails.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0644))

	require.Error(t, s.Set("usage_daily", []byte(`[]`)))
	got, err := s.Get("usage_daily")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2026-03-10","minutes":5}]`, string(got))

	require.Error(t, s.Set("progress_completed", []byte(`[]`)))
	_, err = s.Get("progress_completed")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.Error(t, s.Delete("usage_daily"))
	_, err = s.Get("usage_daily")
	assert.NoError(t, err)
}
