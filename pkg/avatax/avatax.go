// Package avatax provides a client for the AvaTax REST service with an offline
// cache of tax reference data.
//
// A Client downloads a location's point-of-sale tax content and the nationwide
// ZIP code rate table to disk, then answers lookups from memory so a till or
// checkout can keep working without a round trip per sale.
//
// Example usage:
//
//	client, err := avatax.New(avatax.WithAppName("pos"), avatax.WithEnvironment("sandbox"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.AddCredentials(token, ""); err != nil {
//	    log.Fatal(err)
//	}
//	_ = client.WithZipcodeTaxContent("/var/cache/avatax")
//	if err := client.RefreshOfflineContent(ctx, avatax.SyncOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//	rate, err := client.ZipRate(ctx, "98101")
package avatax

import (
	"github.com/han8909227/avatax-go/internal/cachefile"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/offline"
	"github.com/han8909227/avatax-go/internal/remote"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

// Re-export core types for public API
type (
	Company     = model.Company
	Rate        = ziprate.Rate
	RetryPolicy = offline.RetryPolicy
	AuthMode    = remote.AuthMode
	PingResult  = remote.PingResult
	Service     = remote.Service
	Response    = remote.Response
)

// Re-export endpoints
const (
	ProductionURL = remote.ProductionURL
	SandboxURL    = remote.SandboxURL
)

// Re-export authentication modes
const (
	AuthNone   = remote.AuthNone
	AuthBasic  = remote.AuthBasic
	AuthBearer = remote.AuthBearer
)

// Re-export error types
type (
	ArgumentError = model.ArgumentError
	NotFoundError = model.NotFoundError
	UpstreamError = model.UpstreamError
	APIError      = remote.APIError
)

// Re-export error sentinels for errors.Is
var (
	ErrInvalidArgument     = model.ErrInvalidArgument
	ErrNotFound            = model.ErrNotFound
	ErrUpstreamUnavailable = model.ErrUpstreamUnavailable
	ErrCorruptSnapshot     = cachefile.ErrCorrupt
	ErrCorruptRate         = ziprate.ErrCorruptRow
	ErrUnauthorized        = remote.ErrUnauthorized
)

// DefaultRetryPolicy returns the ZIP rate download retry bounds used when none is set.
func DefaultRetryPolicy() RetryPolicy {
	return offline.DefaultRetryPolicy()
}
