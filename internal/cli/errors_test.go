package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asteroid-belt/vidtally/internal/db"
	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/ranking"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config load", fmt.Errorf("load config: %w", errors.New("yaml: line 3: mapping values are not allowed")), "config_error"},
		{"unknown backend", fmt.Errorf("load config: %w", errors.New(`invalid store backend "mongo"`)), "config_error"},
		{"store open", fmt.Errorf("initialize store: %w", errors.New("cannot acquire directory lock")), "database_error"},
		{"database open", fmt.Errorf("open database: %w", errors.New("unable to open database file")), "database_error"},
		{"corrupt value", fmt.Errorf("read usage_daily: %w", kv.ErrCorrupt), "corrupt_data_error"},
		{"newer schema", fmt.Errorf("open database: %w", db.ErrSchemaTooNew), "database_error"},
		{"deadline", fmt.Errorf("sync: %w", context.DeadlineExceeded), "network_error"},
		{"wrapped not exist", fmt.Errorf("read theme: %w", os.ErrNotExist), "not_found_error"},
		{"no leaderboard", ranking.ErrNotConfigured, "config_error"},
		{"remote fetch", fmt.Errorf("fetch remote record: %w", errors.New("dial tcp 127.0.0.1:5432: connection refused")), "network_error"},
		{"sync timeout", errors.New("update remote record: context deadline exceeded (Timeout)"), "network_error"},
		{"log dir", errors.New("create log directory: mkdir /var/log/x: permission denied"), "permission_error"},
		{"missing file", errors.New("open /tmp/state.json: file does not exist"), "not_found_error"},
		{"bad seconds", fmt.Errorf("invalid seconds %q: %w", "abc", errors.New(`strconv.ParseFloat: parsing "abc": invalid syntax`)), "validation_error"},
		{"bad theme", errors.New(`invalid theme "disco": choose one of blood, neon, punk`), "validation_error"},
		{"unclassified", errors.New("the sky is falling"), "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

// Keyword categories are tried in order; sentinels come first.
func TestClassifyError_PriorityOrder(t *testing.T) {
	assert.Equal(t, "corrupt_data_error", classifyError(fmt.Errorf("store config: %w", kv.ErrCorrupt)))
	assert.Equal(t, "config_error", classifyError(errors.New("config database error")))
	assert.Equal(t, "database_error", classifyError(errors.New("store network failure")))
	assert.Equal(t, "network_error", classifyError(errors.New("ranking record not found")))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("hello", ""))
	assert.False(t, containsAny("hello world", "foo", "bar"))
	assert.True(t, containsAny("hello world", "foo", "world"))

	// Only the input is lowercased.
	assert.True(t, containsAny("Hello World", "hello"))
	assert.False(t, containsAny("Hello World", "HELLO"))
}

func TestTrackCLIError(t *testing.T) {
	assert.Nil(t, trackCLIError("progress record", nil))

	err := errors.New("config missing")
	assert.Same(t, err, trackCLIError("progress record", err))
}

func TestRootCmd(t *testing.T) {
	assert.Equal(t, "vidtally", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"open", "close", "timer", "progress", "badges", "usage", "leaderboard", "sync", "info", "feedback", "version", "metrics"} {
		assert.Contains(t, names, want)
	}
}
