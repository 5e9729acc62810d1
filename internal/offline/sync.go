// Package offline downloads tax reference data to disk and reads it back.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/han8909227/avatax-go/internal/cachefile"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/remote"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

// DateLayout is the format of the effective date sent to the ZIP rate download.
const DateLayout = "2006-01-02"

// RetryPolicy bounds the ZIP rate download. The service sometimes answers with a
// stub table; anything under MinRows rows is treated as not ready yet.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	MinRows     int
}

// DefaultRetryPolicy returns 10 attempts, 2 seconds apart, expecting at least 100 rows.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 10,
		Delay:       2 * time.Second,
		MinRows:     100,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.MinRows <= 0 {
		p.MinRows = def.MinRows
	}
	return p
}

// Request selects what a sync run downloads. An empty directory skips that dataset.
type Request struct {
	ContentDir string
	ZipDir     string
	LocationID int64
	// CompanyID overrides the account's default company when positive.
	CompanyID int64
	// Date is the ZIP rate effective date, YYYY-MM-DD. Empty means today.
	Date string
}

// Result reports what a run wrote.
type Result struct {
	ContentPath string
	ZipPath     string
	ZipRows     int
	Attempts    int
}

// Syncer writes offline snapshots fetched from the remote service.
type Syncer struct {
	svc       remote.Service
	companies *CompanyCache
	policy    RetryPolicy
	now       func() time.Time
	log       zerolog.Logger
}

// SyncerOption configures a Syncer
type SyncerOption func(*Syncer)

// WithRetryPolicy sets the ZIP download retry bounds
func WithRetryPolicy(p RetryPolicy) SyncerOption {
	return func(s *Syncer) {
		s.policy = p.normalized()
	}
}

// WithClock sets the clock used for default dates and file names
func WithClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) SyncerOption {
	return func(s *Syncer) {
		s.log = logger
	}
}

// WithCompanyCache shares a default-company cache with the caller
func WithCompanyCache(c *CompanyCache) SyncerOption {
	return func(s *Syncer) {
		if c != nil {
			s.companies = c
		}
	}
}

// NewSyncer creates a new syncer
func NewSyncer(svc remote.Service, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		svc:       svc,
		companies: &CompanyCache{},
		policy:    DefaultRetryPolicy(),
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run downloads the requested datasets and replaces their snapshot files.
// The content step runs before the ZIP step; a failure in either stops the run
// and leaves files already written in place.
func (s *Syncer) Run(ctx context.Context, req Request) (*Result, error) {
	if req.ContentDir == "" && req.ZipDir == "" {
		return nil, model.NewArgumentError("cache directory", nil,
			"bind a tax content or ZIP rate directory before syncing")
	}
	if req.ContentDir != "" && req.LocationID <= 0 {
		return nil, model.NewArgumentError("location_id", req.LocationID, "must be positive")
	}

	date := req.Date
	if date == "" {
		date = s.now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, model.NewArgumentError("date", date, "must be YYYY-MM-DD")
	}

	namer := cachefile.NewNamer(s.now)
	result := &Result{}

	if req.ContentDir != "" {
		path, err := s.syncContent(ctx, namer, req)
		if err != nil {
			return nil, err
		}
		result.ContentPath = path
	}

	if req.ZipDir != "" {
		path, rows, attempts, err := s.syncZipRates(ctx, namer, req.ZipDir, date)
		if err != nil {
			return nil, err
		}
		result.ZipPath, result.ZipRows, result.Attempts = path, rows, attempts
	}

	return result, nil
}

func (s *Syncer) syncContent(ctx context.Context, namer cachefile.Namer, req Request) (string, error) {
	companyID := req.CompanyID
	if companyID <= 0 {
		company, err := s.companies.Get(ctx, s.svc)
		if err != nil {
			return "", fmt.Errorf("failed to resolve default company: %w", err)
		}
		companyID = company.ID
	}

	resp, err := s.svc.FetchLocationTaxContent(ctx, companyID, req.LocationID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tax content for location %d: %w", req.LocationID, err)
	}
	if !json.Valid(resp.Content) {
		return "", fmt.Errorf("tax content for location %d is not valid JSON", req.LocationID)
	}

	path := namer.Join(req.ContentDir, cachefile.ContentFileName, req.LocationID)
	if err := cachefile.WriteFile(path, resp.Content); err != nil {
		return "", err
	}

	s.log.Info().
		Int64("company_id", companyID).
		Int64("location_id", req.LocationID).
		Str("path", path).
		Int("bytes", len(resp.Content)).
		Msg("tax content synced")
	return path, nil
}

var errShortTable = errors.New("rate table below minimum row count")

func (s *Syncer) syncZipRates(ctx context.Context, namer cachefile.Namer, dir, date string) (string, int, int, error) {
	var attempts, lastRows int

	fetch := func() ([][]string, error) {
		attempts++
		resp, err := s.svc.DownloadZipRates(ctx, date)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to download ZIP rates for %s: %w", date, err))
		}
		rows, err := ziprate.ParseCSV(resp.Content)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		lastRows = len(rows)
		if lastRows < s.policy.MinRows {
			return nil, errShortTable
		}
		return rows, nil
	}

	rows, err := backoff.Retry(ctx, fetch,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.policy.Delay)),
		backoff.WithMaxTries(uint(s.policy.MaxAttempts)),
		// Attempts and delay bound the loop; ctx bounds the wall clock.
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.log.Warn().
				Int("attempt", attempts).
				Int("rows", lastRows).
				Int("min_rows", s.policy.MinRows).
				Dur("wait", wait).
				Msg("ZIP rate table incomplete, retrying")
		}),
	)
	if err != nil {
		if errors.Is(err, errShortTable) {
			return "", 0, attempts, model.NewUpstreamError(string(remote.OpDownloadZipRates), attempts, lastRows,
				"failed to fetch rate data", nil)
		}
		return "", 0, attempts, err
	}

	table := ziprate.FromRows(rows)
	path := namer.Join(dir, cachefile.ZipRateFileName, 0)
	if err := cachefile.WriteJSON(path, table); err != nil {
		return "", 0, attempts, err
	}

	s.log.Info().
		Str("date", date).
		Str("path", path).
		Int("rows", len(rows)).
		Int("zip_codes", len(table)).
		Int("attempts", attempts).
		Msg("ZIP rates synced")
	return path, len(rows), attempts, nil
}
