// Package kvtest holds a behavioural test suite shared by every kv.Store
// implementation, and FlakyStore for exercising read and write failures.
package kvtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/kv"
)

// Run exercises the kv.Store contract against stores built by newStore.
// newStore is called once per subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get("progress:nope")
		assert.True(t, errors.Is(err, kv.ErrNotFound), "want ErrNotFound, got %v", err)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set("usage_daily", []byte(`[{"day":"2026-01-01","minutes":2}]`)))
		require.NoError(t, s.Set("usage_daily", []byte(`[{"day":"2026-01-01","minutes":4}]`)))

		got, err := s.Get("usage_daily")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"day":"2026-01-01","minutes":4}]`, string(got))
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set("progress:a", []byte(`{}`)))
		require.NoError(t, s.Delete("progress:a"))
		require.NoError(t, s.Delete("progress:a"))

		_, err := s.Get("progress:a")
		assert.True(t, errors.Is(err, kv.ErrNotFound))
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"progress:b", "progress:a", "progress_last_watched", "usage_daily"} {
			require.NoError(t, s.Set(k, []byte(`{}`)))
		}

		keys, err := s.Keys("progress:")
		require.NoError(t, err)
		assert.Equal(t, []string{"progress:a", "progress:b"}, keys)

		none, err := s.Keys("achievements")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("JSONHelpers", func(t *testing.T) {
		s := newStore(t)
		type rec struct {
			Seconds float64 `json:"seconds"`
		}

		var out rec
		found, err := kv.GetJSON(s, "progress:x", &out)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, kv.SetJSON(s, "progress:x", rec{Seconds: 42}))
		found, err = kv.GetJSON(s, "progress:x", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 42.0, out.Seconds)
	})
}
