package stream

import (
	"encoding/json"
	"time"

	"github.com/bazarlabs/livefeed/httpclient"
	"github.com/bazarlabs/livefeed/logger"
)

const defaultRetryDelay = 5 * time.Second

// Handler receives one feed record. The payload is valid JSON but otherwise
// opaque to the session; its shape is a contract between producer and caller.
type Handler func(event string, data json.RawMessage)

// Config configures a feed session. Token and Enabled are snapshots taken at
// Start; rotating the token means stopping this session and starting a new
// one.
type Config struct {
	// Endpoint is the URL of the event-stream endpoint.
	Endpoint string

	// Token is the bearer token presented on connect. An empty token
	// suppresses the session entirely: no request is ever issued.
	Token string

	// Handlers maps event-type names to their handlers.
	Handlers map[string]Handler

	// Wildcard, if set, receives every record, after the named handler.
	Wildcard Handler

	// Enabled gates the session. A disabled session stays idle.
	Enabled bool

	// RetryDelay is the fixed pause between reconnect attempts. There is no
	// backoff and no attempt limit. Defaults to 5s; overridable so tests
	// don't sleep.
	RetryDelay time.Duration

	// Client is the HTTP client used to connect. Defaults to a plain client.
	Client *httpclient.Client

	// Logger receives connect and disconnect diagnostics. Defaults to the
	// global logger.
	Logger *logger.Logger
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.Client == nil {
		// Config zero value passes validation, New cannot fail here.
		c.Client, _ = httpclient.New(httpclient.Config{})
	}
	if c.Logger == nil {
		c.Logger = logger.GetGlobalLogger().WithComponent("stream")
	}
}
