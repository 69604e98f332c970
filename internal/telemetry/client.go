package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Event names.
const (
	EventBatchValidated    = "batch_validated"
	EventAnalysisCompleted = "analysis_completed"
	EventAnalysisFailed    = "analysis_failed"
)

// Properties are event properties.
type Properties = map[string]any

// Client sends events. Track never blocks and never fails.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// enqueuer is the part of the PostHog SDK the client uses.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// PostHogClient is a Client backed by PostHog.
type PostHogClient struct {
	mu      sync.Mutex
	client  enqueuer
	config  *Config
	version string
	closed  bool
}

// ClientConfig configures New.
type ClientConfig struct {
	APIKey   string
	Endpoint string // empty means PostHog cloud
	Version  string
	Config   *Config
	// Disabled is the hard off switch from the app config.
	Disabled bool
}

// New returns a PostHog client when the user opted in and a key is
// configured, otherwise a NoopClient.
func New(cfg ClientConfig) (Client, error) {
	if cfg.Disabled || cfg.APIKey == "" || !cfg.Config.IsEnabled() {
		return NoopClient{}, nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	ph, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClient(ph, cfg.Config, cfg.Version), nil
}

func newPostHogClient(enq enqueuer, cfg *Config, version string) *PostHogClient {
	return &PostHogClient{client: enq, config: cfg, version: version}
}

// Track enqueues event with the standard properties added.
func (c *PostHogClient) Track(event string, properties Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.config.IsEnabled() {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH).
		Set("smarttask_version", c.version).
		Set("$process_person_profile", false)

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.config.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes queued events. Later calls to Track are dropped.
func (c *PostHogClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// NoopClient drops every event.
type NoopClient struct{}

func (NoopClient) Track(string, Properties) {}
func (NoopClient) Close() error             { return nil }

type quietLogger struct{}

func (quietLogger) Debugf(string, ...interface{}) {}
func (quietLogger) Logf(string, ...interface{})   {}
func (quietLogger) Warnf(string, ...interface{})  {}
func (quietLogger) Errorf(string, ...interface{}) {}
