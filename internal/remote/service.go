// Package remote is the client side of the AvaTax REST service as far as the
// offline cache needs it.
package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/han8909227/avatax-go/internal/model"
)

// Operation names a remote call, for logs and errors.
type Operation string

const (
	OpFetchLocationTaxContent Operation = "FetchLocationTaxContent"
	OpDownloadZipRates        Operation = "DownloadZipRates"
	OpListCompanies           Operation = "ListCompanies"
	OpTaxRatesByPostalCode    Operation = "TaxRatesByPostalCode"
	OpPing                    Operation = "Ping"
)

// Response is a successful remote reply.
type Response struct {
	Operation  Operation
	StatusCode int
	Content    []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return fmt.Errorf("%s returned malformed JSON: %w", r.Operation, err)
	}
	return nil
}

// Service is the set of remote operations the client depends on.
type Service interface {
	// FetchLocationTaxContent returns the point-of-sale tax content document for a location
	FetchLocationTaxContent(ctx context.Context, companyID, locationID int64) (*Response, error)

	// DownloadZipRates returns the nationwide ZIP rate table as CSV for date (YYYY-MM-DD)
	DownloadZipRates(ctx context.Context, date string) (*Response, error)

	// ListCompanies returns the account's companies
	ListCompanies(ctx context.Context) (*Response, error)

	// TaxRatesByPostalCode returns the rates for a single postal code
	TaxRatesByPostalCode(ctx context.Context, country, postalCode string) (*Response, error)

	// Ping checks connectivity and credentials
	Ping(ctx context.Context) (*Response, error)
}

// DefaultCompany lists the account's companies and returns the first one flagged as default.
func DefaultCompany(ctx context.Context, svc Service) (*model.Company, error) {
	resp, err := svc.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var list model.CompanyList
	if err := resp.JSON(&list); err != nil {
		return nil, err
	}

	company := list.Default()
	if company == nil {
		return nil, model.NewNotFoundError("default company", "", "no company on the account is flagged as default; pass a company id")
	}
	return company, nil
}

// PingResult is the body of the ping endpoint.
type PingResult struct {
	Version                string `json:"version"`
	Authenticated          bool   `json:"authenticated"`
	AuthenticationType     string `json:"authenticationType"`
	AuthenticatedUserName  string `json:"authenticatedUserName"`
	AuthenticatedUserID    int64  `json:"authenticatedUserId"`
	AuthenticatedAccountID int64  `json:"authenticatedAccountId"`
}
