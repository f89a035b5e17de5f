// Package telemetry provides anonymous usage tracking via PostHog.
package telemetry

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/log"
)

// PostHogAPIKey is set at compile time via ldflags.
var PostHogAPIKey string

// TrackingIDProvider is an interface for getting tracking IDs.
// This allows for testing without a real database.
type TrackingIDProvider interface {
	GetOrCreateTrackingID() string
}

// Client interface for telemetry operations.
type Client interface {
	Track(event string, properties map[string]interface{})
	Close()
	GetTrackingID() string

	// CLI events
	TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64)
	TrackCLIError(commandName, errorType string)

	// TUI events
	TrackViewNavigated(viewName, previousView string)

	// Engine events
	TrackBadgeEarned(badgeID, signal string)
	TrackItemCompleted(completedCount int)
	TrackUsageRecorded(minutes, totalMinutes int)
	TrackRankingSynced(outcome string)

	// Used in CLI & TUI
	TrackAppStarted(mode string, rankingEnabled bool)
	TrackAppExited(mode string, sessionDurationMs int64, commandsRun int)

	// MCP events
	TrackMCPToolCalled(toolName string, durationMs int64, success bool)
}

// DefaultEndpoint is the PostHog ingestion host.
const DefaultEndpoint = "https://us.i.posthog.com"

// Options tunes a PostHog client.
type Options struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	// Properties are attached to every event, e.g. the configured backends.
	Properties map[string]interface{}
}

// BackendProperties returns the common properties describing where progress
// lives and which ranking remote is in use.
func BackendProperties(storeBackend, rankingBackend string) map[string]interface{} {
	return map[string]interface{}{
		"store_backend":   storeBackend,
		"ranking_backend": rankingBackend,
	}
}

// enqueuer is the part of posthog.Client the tracker uses.
type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// posthogClient wraps the PostHog SDK.
type posthogClient struct {
	client    enqueuer
	sessionID string
	common    map[string]interface{}
	mu        sync.Mutex
}

// noopClient does nothing (for disabled telemetry).
type noopClient struct{}

// IsEnabled returns true if telemetry is enabled.
// Telemetry is opt-out: enabled by default unless VIDTALLY_TELEMETRY_TRACKING_ENABLED=false.
func IsEnabled() bool {
	return os.Getenv("VIDTALLY_TELEMETRY_TRACKING_ENABLED") != "false" && PostHogAPIKey != ""
}

// New creates a new telemetry client with a persistent tracking ID from the database.
// If provider is nil, a new UUID is generated per session.
func New(provider TrackingIDProvider) Client {
	return NewWithOptions(provider, Options{})
}

// NewWithOptions is New with a custom endpoint and common event properties.
func NewWithOptions(provider TrackingIDProvider, opts Options) Client {
	if !IsEnabled() {
		return &noopClient{}
	}

	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	client, err := posthog.NewWithConfig(PostHogAPIKey, posthog.Config{
		Endpoint:  opts.Endpoint,
		BatchSize: 250,
		Interval:  5 * time.Second,
		Logger:    sdkLogger{},
	})
	if err != nil {
		logger().Debug().Err(err).Msg("posthog client unavailable, telemetry off")
		return &noopClient{}
	}

	return newPosthogClient(client, trackingID(provider), opts.Properties)
}

func newPosthogClient(client enqueuer, sessionID string, common map[string]interface{}) *posthogClient {
	merged := make(map[string]interface{}, len(common))
	for k, v := range common {
		merged[k] = v
	}
	return &posthogClient{client: client, sessionID: sessionID, common: merged}
}

func trackingID(provider TrackingIDProvider) string {
	if provider != nil {
		if id := provider.GetOrCreateTrackingID(); id != "" {
			return id
		}
	}
	return uuid.New().String()
}

// Noop returns a client that discards every event.
func Noop() Client {
	return &noopClient{}
}

// Track sends an event to PostHog. Event properties override common ones.
func (c *posthogClient) Track(event string, properties map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	props := posthog.NewProperties()
	props.Set("$process_person_profile", true)
	props.Set("$geoip_disable", true)

	for k, v := range c.common {
		props.Set(k, v)
	}
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := c.client.Enqueue(posthog.Capture{
		DistinctId: c.sessionID,
		Event:      event,
		Properties: props,
	}); err != nil {
		logger().Debug().Err(err).Str("event", event).Msg("event dropped")
	}
}

// Close flushes remaining events and closes the client.
func (c *posthogClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.client.Close()
}

// GetTrackingID returns the anonymous tracking ID for the session.
func (c *posthogClient) GetTrackingID() string {
	return c.sessionID
}

// Track is a no-op for disabled telemetry.
func (c *noopClient) Track(event string, properties map[string]interface{}) {}

// Close is a no-op for disabled telemetry.
func (c *noopClient) Close() {}

// GetTrackingID returns empty string for disabled telemetry.
func (c *noopClient) GetTrackingID() string {
	return ""
}

// logger returns the telemetry child of the global logger.
func logger() *zerolog.Logger {
	l := log.WithComponent("telemetry")
	return &l
}

// sdkLogger routes PostHog SDK output into the log file. The SDK's default
// logger writes to stderr, which the dashboard and the MCP server own.
type sdkLogger struct{}

func (sdkLogger) Debugf(format string, args ...interface{}) {
	logger().Debug().Msgf(format, args...)
}

func (sdkLogger) Logf(format string, args ...interface{}) {
	logger().Info().Msgf(format, args...)
}

func (sdkLogger) Warnf(format string, args ...interface{}) {
	logger().Warn().Msgf(format, args...)
}

func (sdkLogger) Errorf(format string, args ...interface{}) {
	logger().Error().Msgf(format, args...)
}
