package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/asteroid-belt/vidtally/internal/db"
	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/ranking"
)

// Error categories reported with cli_error events. Never the message itself,
// which may carry video IDs or paths.
const (
	errConfig     = "config_error"
	errDatabase   = "database_error"
	errCorrupt    = "corrupt_data_error"
	errNetwork    = "network_error"
	errPermission = "permission_error"
	errNotFound   = "not_found_error"
	errValidation = "validation_error"
	errUnknown    = "unknown_error"
)

// sentinels are matched with errors.Is before any keyword matching.
var sentinels = []struct {
	target   error
	category string
}{
	{ranking.ErrNotConfigured, errConfig},
	{db.ErrSchemaTooNew, errDatabase},
	{kv.ErrCorrupt, errCorrupt},
	{context.DeadlineExceeded, errNetwork},
	{os.ErrPermission, errPermission},
	{os.ErrNotExist, errNotFound},
}

// keywords classify wrapped errors from libraries that don't export
// sentinels. First match wins.
var keywords = []struct {
	category string
	words    []string
}{
	{errConfig, []string{"config", "configuration"}},
	{errDatabase, []string{"database", "db", "store"}},
	{errNetwork, []string{"network", "timeout", "connection", "remote", "ranking"}},
	{errPermission, []string{"permission", "access denied"}},
	{errNotFound, []string{"not found", "does not exist"}},
	{errValidation, []string{"invalid", "parse", "format"}},
}

// trackCLIError reports err's category and returns err unchanged.
// Call this before returning errors from CLI commands.
func trackCLIError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	telemetryClient.TrackCLIError(cmdName, classifyError(err))
	return err
}

func classifyError(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.category
		}
	}
	msg := err.Error()
	for _, k := range keywords {
		if containsAny(msg, k.words...) {
			return k.category
		}
	}
	return errUnknown
}

// containsAny reports whether s contains any of substrs, ignoring the case of s.
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
