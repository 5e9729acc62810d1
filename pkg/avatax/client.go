package avatax

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/han8909227/avatax-go/internal/offline"
	"github.com/han8909227/avatax-go/internal/remote"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

// Client is a configured session against one AvaTax environment. It is safe for
// concurrent use; one mutex guards credentials and the in-memory caches.
type Client struct {
	mu sync.Mutex

	identity    remote.Identity
	environment string
	endpoint    string
	creds       remote.Credentials

	injected    remote.Service
	http        *remote.Client
	httpTimeout time.Duration
	httpClient  *http.Client

	log       zerolog.Logger
	retry     offline.RetryPolicy
	now       func() time.Time
	companies *offline.CompanyCache

	contentDir string
	locationID int64
	zipDir     string

	content  json.RawMessage
	zipRates ziprate.Table
	zipPath  string
}

// New creates a client. Identity fields are validated here because they are sent
// as a header on every request.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.identity.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		identity:    cfg.identity,
		environment: cfg.environment,
		endpoint:    remote.ResolveEndpoint(cfg.environment),
		injected:    cfg.service,
		httpTimeout: cfg.httpTimeout,
		httpClient:  cfg.httpClient,
		log:         cfg.logger,
		retry:       cfg.retry,
		now:         cfg.now,
		companies:   &offline.CompanyCache{},
	}

	if !remote.IsKnownEnvironment(cfg.environment) {
		c.log.Warn().
			Str("environment", cfg.environment).
			Str("endpoint", c.endpoint).
			Msg("unknown environment, using production")
	}

	return c, nil
}

// AddCredentials sets the credentials used for every later call. A username on
// its own is sent as a bearer token; with a password it is HTTP basic auth.
func (c *Client) AddCredentials(username, password string) error {
	creds, err := remote.NewCredentials(username, password)
	if err != nil {
		return err
	}

	if exp, ok := creds.BearerExpiry(); ok && exp.Before(c.now()) {
		c.log.Warn().Time("expired_at", exp).Msg("bearer token has expired")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.creds = creds
	c.http = nil
	c.companies = &offline.CompanyCache{}

	c.log.Debug().
		Str("auth_mode", string(creds.Mode())).
		Str("user", creds.Username()).
		Msg("credentials set")
	return nil
}

// Endpoint returns the resolved base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ClientHeader returns the X-Avalara-Client value sent with each request.
func (c *Client) ClientHeader() string {
	return c.identity.ClientHeader()
}

// AuthMode reports how requests are authenticated.
func (c *Client) AuthMode() AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.Mode()
}

// DefaultCompany returns the account's default company. The first successful
// lookup is reused for the lifetime of the credentials.
func (c *Client) DefaultCompany(ctx context.Context) (*Company, error) {
	svc, companies := c.remoteState()
	return companies.Get(ctx, svc)
}

// Ping checks connectivity and whether the credentials were accepted.
func (c *Client) Ping(ctx context.Context) (*PingResult, error) {
	svc, _ := c.remoteState()
	resp, err := svc.Ping(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			return nil, fmt.Errorf("%s rejected the %s credentials: %w", c.endpoint, c.AuthMode(), err)
		}
		return nil, err
	}

	var result PingResult
	if err := resp.JSON(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) remoteState() (remote.Service, *offline.CompanyCache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serviceLocked(), c.companies
}

// serviceLocked returns the remote service, building the HTTP client on first use.
// Callers hold c.mu.
func (c *Client) serviceLocked() remote.Service {
	if c.injected != nil {
		return c.injected
	}
	if c.http == nil {
		c.http = remote.NewClient(
			remote.WithBaseURL(c.endpoint),
			remote.WithTimeout(c.httpTimeout),
			remote.WithHTTPClient(c.httpClient),
			remote.WithIdentity(c.identity),
			remote.WithCredentials(c.creds),
			remote.WithLogger(c.log),
		)
	}
	return c.http
}
