package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 2 * time.Minute

	acceptJSON = "application/json"
	acceptCSV  = "text/csv, application/json"
)

// Client talks to the AvaTax REST API over HTTP.
type Client struct {
	http     *http.Client
	baseURL  string
	identity Identity
	creds    Credentials
	log      zerolog.Logger
}

var _ Service = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	identity    Identity
	credentials Credentials
	logger      zerolog.Logger
}

// WithBaseURL sets the API base URL
func WithBaseURL(url string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseURL = url
	}
}

// WithTimeout sets custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.timeout = timeout
	}
}

// WithHTTPClient uses hc as the template for the underlying client; its transport
// is wrapped for authentication.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.httpClient = hc
	}
}

// WithIdentity sets the application identity sent in X-Avalara-Client
func WithIdentity(id Identity) ClientOption {
	return func(cfg *clientConfig) {
		cfg.identity = id
	}
}

// WithCredentials sets basic or bearer credentials
func WithCredentials(creds Credentials) ClientOption {
	return func(cfg *clientConfig) {
		cfg.credentials = creds
	}
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// NewClient creates a new AvaTax REST client
func NewClient(opts ...ClientOption) *Client {
	cfg := &clientConfig{
		baseURL: ProductionURL,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	hc := &http.Client{Timeout: cfg.timeout}
	if cfg.httpClient != nil {
		copied := *cfg.httpClient
		hc = &copied
		if hc.Timeout == 0 {
			hc.Timeout = cfg.timeout
		}
	}
	hc.Transport = cfg.credentials.transport(hc.Transport)

	return &Client{
		http:     hc,
		baseURL:  strings.TrimSuffix(cfg.baseURL, "/"),
		identity: cfg.identity,
		creds:    cfg.credentials,
		log:      cfg.logger,
	}
}

// FetchLocationTaxContent downloads the point-of-sale data file for a location
func (c *Client) FetchLocationTaxContent(ctx context.Context, companyID, locationID int64) (*Response, error) {
	path := fmt.Sprintf("/api/v2/companies/%d/locations/%d/pointofsaledata", companyID, locationID)
	return c.get(ctx, OpFetchLocationTaxContent, path, nil, acceptJSON)
}

// DownloadZipRates downloads the ZIP code rate table effective on date (YYYY-MM-DD)
func (c *Client) DownloadZipRates(ctx context.Context, date string) (*Response, error) {
	path := "/api/v2/taxratesbyzipcode/download/" + url.PathEscape(date)
	return c.get(ctx, OpDownloadZipRates, path, nil, acceptCSV)
}

// ListCompanies lists the companies on the account
func (c *Client) ListCompanies(ctx context.Context) (*Response, error) {
	return c.get(ctx, OpListCompanies, "/api/v2/companies", nil, acceptJSON)
}

// TaxRatesByPostalCode returns the combined rate for one postal code
func (c *Client) TaxRatesByPostalCode(ctx context.Context, country, postalCode string) (*Response, error) {
	query := url.Values{}
	query.Set("country", country)
	query.Set("postalCode", postalCode)
	return c.get(ctx, OpTaxRatesByPostalCode, "/api/v2/taxrates/bypostalcode", query, acceptJSON)
}

// Ping checks connectivity and reports whether the credentials were accepted
func (c *Client) Ping(ctx context.Context) (*Response, error) {
	return c.get(ctx, OpPing, "/api/v2/utilities/ping", nil, acceptJSON)
}

func (c *Client) get(ctx context.Context, op Operation, path string, query url.Values, accept string) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set(ClientHeaderName, c.identity.ClientHeader())
	req.Header.Set("X-Request-Id", requestID)
	c.creds.apply(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	c.log.Debug().
		Str("operation", string(op)).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("avatax request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(op, resp.StatusCode, body)
	}

	return &Response{
		Operation:  op,
		StatusCode: resp.StatusCode,
		Content:    body,
	}, nil
}
