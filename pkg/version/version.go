// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// These are set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var (
	parsedVersion  *semver.Version
	parseAttempted bool
)

// Info returns formatted version information.
func Info() string {
	commitShort := Commit
	if len(commitShort) > 7 {
		commitShort = commitShort[:7]
	}
	return fmt.Sprintf(
		"vidtally %s (%s) built on %s with %s",
		Version,
		commitShort,
		BuildDate,
		runtime.Version(),
	)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// resetParsedVersion clears the cached parsed version for testing.
func resetParsedVersion() {
	parsedVersion = nil
	parseAttempted = false
}

// Parsed returns the parsed semantic version, or nil for builds like "dev".
func Parsed() *semver.Version {
	if parsedVersion != nil || parseAttempted {
		return parsedVersion
	}
	parseAttempted = true

	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil
	}
	parsedVersion = v
	return parsedVersion
}

// IsPrerelease reports whether the running build is a pre-release.
func IsPrerelease() bool {
	v := Parsed()
	return v != nil && v.Prerelease() != ""
}

// IsDevBuild reports whether the build carries no valid semver.
func IsDevBuild() bool {
	return Parsed() == nil
}

// OlderThan reports whether the running build is older than other.
// Unparseable versions on either side compare as not older.
//
// The engine uses this to warn when the local store was last written by a
// newer release.
func OlderThan(other string) bool {
	current := Parsed()
	if current == nil {
		return false
	}
	otherV, err := semver.NewVersion(other)
	if err != nil {
		return false
	}
	return current.LessThan(otherV)
}
