package cli

import (
	"fmt"
	"io"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/progress"
)

// showResumeHint prints where the user left off. Returns true if anything
// was shown.
func showResumeHint(e *engine.Engine, w io.Writer) bool {
	if e == nil {
		return false
	}
	lw, ok := e.Ledger.LastWatched()
	if !ok {
		return false
	}

	rec := e.Ledger.ReadProgress(lw.ItemID)
	where := ""
	if lw.ContainerID != "" {
		where = fmt.Sprintf(" (%s)", lw.ContainerID)
	}
	_, _ = fmt.Fprintf(w, "\nContinue watching %s%s at %s", lw.ItemID, where, progress.FormatClock(lw.SecondsWatched))
	if rec.DurationSeconds > 0 {
		_, _ = fmt.Fprintf(w, " of %s", progress.FormatClock(rec.DurationSeconds))
	}
	_, _ = fmt.Fprintln(w)
	return true
}
