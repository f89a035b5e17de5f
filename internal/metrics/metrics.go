// Package metrics provides Prometheus metrics for the vidtally engine.
//
// Labels are bounded enums; item and client IDs never appear as label values.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Registry holds every vidtally metric. It is separate from the default
// registry so embedding applications decide what to expose.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// ProgressSamplesTotal counts playback samples by outcome (recorded, skipped, failed).
	ProgressSamplesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_progress_samples_total",
		Help: "Total number of playback position samples, by outcome.",
	}, []string{"outcome"})

	// ItemsCompletedTotal counts items that crossed the completion threshold.
	ItemsCompletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "vidtally_items_completed_total",
		Help: "Total number of items newly marked completed.",
	})

	// PlaybackFlushesTotal counts progress flushes by trigger.
	PlaybackFlushesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_playback_flushes_total",
		Help: "Total number of progress flushes, by trigger (pause, ended, switch, close).",
	}, []string{"trigger"})

	// PlaybackSampleErrorsTotal counts sampling ticks skipped because the player failed.
	PlaybackSampleErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "vidtally_playback_sample_errors_total",
		Help: "Total number of sampling ticks skipped due to player errors.",
	})

	// UsageSessionsTotal counts stopped usage sessions by outcome (recorded, discarded).
	UsageSessionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_usage_sessions_total",
		Help: "Total number of usage sessions stopped, by outcome.",
	}, []string{"outcome"})

	// UsageMinutesTotal counts minutes folded into daily usage.
	UsageMinutesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "vidtally_usage_minutes_total",
		Help: "Total number of usage minutes recorded.",
	})

	// AchievementsEarnedTotal counts achievements earned by signal kind.
	AchievementsEarnedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_achievements_earned_total",
		Help: "Total number of achievements earned, by signal kind.",
	}, []string{"signal"})

	// RankingSyncTotal counts ranking syncs by result (inserted, updated, unchanged, failed).
	RankingSyncTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_ranking_sync_total",
		Help: "Total number of ranking syncs, by result.",
	}, []string{"result"})

	// CorruptReadsTotal counts persisted values that failed to decode, by owning component.
	CorruptReadsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtally_corrupt_reads_total",
		Help: "Total number of stored values that could not be decoded, by component.",
	}, []string{"component"})
)

// WriteText writes every metric in the Prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
