package avatax

import (
	"context"
	"errors"

	"github.com/han8909227/avatax-go/internal/cachefile"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/offline"
)

// SyncOptions tunes a sync run.
type SyncOptions struct {
	// CompanyID overrides the account's default company when positive.
	CompanyID int64
	// Date is the ZIP rate effective date, YYYY-MM-DD. Empty means today.
	Date string
}

// CacheStatus describes the bound cache directories and what is loaded from them.
type CacheStatus struct {
	ContentDir    string `json:"content_dir,omitempty"`
	LocationID    int64  `json:"location_id,omitempty"`
	ContentLoaded bool   `json:"content_loaded"`
	ZipDir        string `json:"zip_dir,omitempty"`
	ZipSnapshot   string `json:"zip_snapshot,omitempty"`
	ZipCodes      int    `json:"zip_codes"`
}

// WithRetailTaxContent binds the tax content cache for a location and loads the
// cached snapshot if one exists. A missing or corrupt snapshot leaves the cache
// empty so a later sync can replace it.
func (c *Client) WithRetailTaxContent(dir string, locationID int64) error {
	if dir == "" {
		return model.NewArgumentError("content_dir", nil, "must not be empty")
	}
	if locationID <= 0 {
		return model.NewArgumentError("location_id", locationID, "must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.contentDir = dir
	c.locationID = locationID
	c.content = nil

	return c.loadContentLocked(true)
}

// WithZipcodeTaxContent binds the ZIP rate cache and loads the most recent
// snapshot if one exists. A missing or corrupt snapshot leaves the cache empty.
func (c *Client) WithZipcodeTaxContent(dir string) error {
	if dir == "" {
		return model.NewArgumentError("zip_dir", nil, "must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.zipDir = dir
	c.zipRates = nil
	c.zipPath = ""

	return c.loadZipRatesLocked(true)
}

// SyncOfflineContent downloads fresh snapshots into the bound directories. The
// in-memory caches are left alone; call LoadOfflineContent to pick the files up.
func (c *Client) SyncOfflineContent(ctx context.Context, opts SyncOptions) error {
	c.mu.Lock()
	req := offline.Request{
		ContentDir: c.contentDir,
		ZipDir:     c.zipDir,
		LocationID: c.locationID,
		CompanyID:  opts.CompanyID,
		Date:       opts.Date,
	}
	syncer := offline.NewSyncer(c.serviceLocked(),
		offline.WithRetryPolicy(c.retry),
		offline.WithClock(c.now),
		offline.WithLogger(c.log),
		offline.WithCompanyCache(c.companies),
	)
	c.mu.Unlock()

	_, err := syncer.Run(ctx, req)
	return err
}

// LoadOfflineContent replaces the in-memory caches with the snapshots on disk.
func (c *Client) LoadOfflineContent() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.contentDir == "" && c.zipDir == "" {
		return model.NewArgumentError("cache directory", nil,
			"bind a tax content or ZIP rate directory before loading")
	}
	if c.contentDir != "" {
		if err := c.loadContentLocked(false); err != nil {
			return err
		}
	}
	if c.zipDir != "" {
		if err := c.loadZipRatesLocked(false); err != nil {
			return err
		}
	}
	return nil
}

// RefreshOfflineContent syncs and then loads.
func (c *Client) RefreshOfflineContent(ctx context.Context, opts SyncOptions) error {
	if err := c.SyncOfflineContent(ctx, opts); err != nil {
		return err
	}
	return c.LoadOfflineContent()
}

// ReloadZipRates reloads only the ZIP rate cache.
func (c *Client) ReloadZipRates() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.zipDir == "" {
		return model.NewArgumentError("zip_dir", nil, "no ZIP rate directory bound")
	}
	return c.loadZipRatesLocked(false)
}

// Status reports the bound directories and cache sizes.
func (c *Client) Status() CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStatus{
		ContentDir:    c.contentDir,
		LocationID:    c.locationID,
		ContentLoaded: c.content != nil,
		ZipDir:        c.zipDir,
		ZipSnapshot:   c.zipPath,
		ZipCodes:      len(c.zipRates),
	}
}

// loadContentLocked reads the content snapshot. With optional set a missing or
// corrupt file is logged and ignored.
func (c *Client) loadContentLocked(optional bool) error {
	content, path, err := offline.LoadContent(c.contentDir, c.locationID)
	if err != nil {
		if optional && c.skipSnapshot(err, "content") {
			return nil
		}
		return err
	}

	c.content = content
	c.log.Debug().Str("path", path).Int("bytes", len(content)).Msg("tax content loaded")
	return nil
}

func (c *Client) loadZipRatesLocked(optional bool) error {
	table, path, err := offline.LoadZipRates(c.zipDir)
	if err != nil {
		if optional && c.skipSnapshot(err, "ZIP rate") {
			return nil
		}
		return err
	}

	c.zipRates = table
	c.zipPath = path
	c.log.Debug().Str("path", path).Int("zip_codes", len(table)).Msg("ZIP rates loaded")
	return nil
}

// skipSnapshot reports whether an eager load error leaves the client usable.
func (c *Client) skipSnapshot(err error, dataset string) bool {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.log.Info().Str("dataset", dataset).Msg("no cache found, continuing without one")
		return true
	case errors.Is(err, cachefile.ErrCorrupt):
		c.log.Warn().Err(err).Str("dataset", dataset).Msg("ignoring unreadable cache, sync to replace it")
		return true
	default:
		return false
	}
}
