package avatax

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	dec "github.com/han8909227/avatax-go/internal/decimal"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/internal/ziprate"
)

// DefaultCountry is the country sent on remote postal code lookups.
const DefaultCountry = "US"

// Estimate is the sales tax on an amount at a ZIP code's combined rate.
type Estimate struct {
	ZipCode string          `json:"zip_code"`
	Amount  decimal.Decimal `json:"amount"`
	Rate    decimal.Decimal `json:"rate"`
	Tax     decimal.Decimal `json:"tax"`
	Total   decimal.Decimal `json:"total"`
	Source  string          `json:"source"`
}

// TaxContent returns the cached tax content for the bound location, or fetches
// it from the service when nothing is cached. Remote results are not written to disk.
func (c *Client) TaxContent(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	content := c.content
	locationID := c.locationID
	svc := c.serviceLocked()
	companies := c.companies
	c.mu.Unlock()

	if content != nil {
		return content, nil
	}
	if locationID <= 0 {
		return nil, model.NewArgumentError("location_id", nil, "bind a location with WithRetailTaxContent first")
	}

	company, err := companies.Get(ctx, svc)
	if err != nil {
		return nil, err
	}
	resp, err := svc.FetchLocationTaxContent(ctx, company.ID, locationID)
	if err != nil {
		return nil, err
	}
	if !json.Valid(resp.Content) {
		return nil, model.NewArgumentError("tax content", nil, "service returned invalid JSON")
	}
	return json.RawMessage(resp.Content), nil
}

// ZipRate returns the rates for a ZIP code. A loaded cache answers on its own and
// reports unknown ZIP codes as not found; without a cache the service is asked.
func (c *Client) ZipRate(ctx context.Context, zip string) (*Rate, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return nil, model.NewArgumentError("zip", nil, "must not be empty")
	}

	c.mu.Lock()
	table := c.zipRates
	zipDir := c.zipDir
	zipPath := c.zipPath
	svc := c.serviceLocked()
	c.mu.Unlock()

	if table != nil {
		rate, ok, err := table.Rate(zip)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", zipPath, err)
		}
		if !ok {
			return nil, model.NewNotFoundError("ZIP code "+zip, zipDir, "not in the cached rate table")
		}
		return &rate, nil
	}

	resp, err := svc.TaxRatesByPostalCode(ctx, DefaultCountry, zip)
	if err != nil {
		return nil, err
	}
	var rates ziprate.PostalRates
	if err := resp.JSON(&rates); err != nil {
		return nil, err
	}
	rate := rates.Rate(zip)
	return &rate, nil
}

// EstimateSalesTax applies a ZIP code's total sales rate to amount, rounded to cents.
func (c *Client) EstimateSalesTax(ctx context.Context, zip string, amount decimal.Decimal) (*Estimate, error) {
	if !dec.IsNonNegative(amount) {
		return nil, model.NewArgumentError("amount", amount.String(), "must not be negative")
	}

	rate, err := c.ZipRate(ctx, zip)
	if err != nil {
		return nil, err
	}

	tax := dec.ApplyRate(amount, rate.TotalSales)
	return &Estimate{
		ZipCode: rate.ZipCode,
		Amount:  amount,
		Rate:    rate.TotalSales,
		Tax:     tax,
		Total:   amount.Add(tax),
		Source:  rate.Source,
	}, nil
}
