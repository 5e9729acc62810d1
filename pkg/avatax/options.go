package avatax

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/han8909227/avatax-go/internal/offline"
	"github.com/han8909227/avatax-go/internal/remote"
)

// Option configures a Client
type Option func(*config)

type config struct {
	identity    remote.Identity
	environment string
	service     remote.Service
	httpTimeout time.Duration
	httpClient  *http.Client
	logger      zerolog.Logger
	retry       offline.RetryPolicy
	now         func() time.Time
}

func defaultConfig() *config {
	return &config{
		httpTimeout: remote.DefaultTimeout,
		logger:      zerolog.Nop(),
		retry:       offline.DefaultRetryPolicy(),
		now:         time.Now,
	}
}

// WithAppName sets the application name reported to the service
func WithAppName(name string) Option {
	return func(c *config) {
		c.identity.AppName = name
	}
}

// WithAppVersion sets the application version reported to the service
func WithAppVersion(version string) Option {
	return func(c *config) {
		c.identity.AppVersion = version
	}
}

// WithMachineName sets the machine name reported to the service
func WithMachineName(name string) Option {
	return func(c *config) {
		c.identity.MachineName = name
	}
}

// WithEnvironment selects the endpoint: "sandbox", "production" or an explicit
// http(s) URL. Anything else falls back to production.
func WithEnvironment(env string) Option {
	return func(c *config) {
		c.environment = env
	}
}

// WithService replaces the HTTP client with another remote implementation.
// Credentials and HTTP options are then ignored.
func WithService(svc Service) Option {
	return func(c *config) {
		c.service = svc
	}
}

// WithHTTPTimeout sets the per-request timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.httpTimeout = timeout
	}
}

// WithHTTPClient sets the http.Client used as the transport template
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRetryPolicy sets the ZIP rate download retry bounds
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *config) {
		c.retry = policy
	}
}

// WithClock sets the clock used for snapshot names and default dates
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
