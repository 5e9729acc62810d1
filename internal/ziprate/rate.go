package ziprate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	dec "github.com/han8909227/avatax-go/internal/decimal"
)

// ErrCorruptRow marks a stored row whose rate columns do not decode.
var ErrCorruptRow = errors.New("corrupt rate row")

// Column positions within a table value (the ZIP column is the key, not part of the value).
const (
	colState = iota
	colCounty
	colCity
	colStateSales
	colStateUse
	colCountySales
	colCountyUse
	colCitySales
	colCityUse
	colTotalSales
	colTotalUse
	colTaxShippingAlone
	colTaxShippingAndHandling
)

// Source values for Rate.Source
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// Rate is the decoded view of one ZIP code's rates. Rates are fractions (0.0725, not 7.25).
type Rate struct {
	ZipCode string `json:"zip_code"`
	State   string `json:"state,omitempty"`
	County  string `json:"county,omitempty"`
	City    string `json:"city,omitempty"`

	StateSales  decimal.Decimal `json:"state_sales"`
	StateUse    decimal.Decimal `json:"state_use"`
	CountySales decimal.Decimal `json:"county_sales"`
	CountyUse   decimal.Decimal `json:"county_use"`
	CitySales   decimal.Decimal `json:"city_sales"`
	CityUse     decimal.Decimal `json:"city_use"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalUse    decimal.Decimal `json:"total_use"`

	TaxShippingAlone       bool `json:"tax_shipping_alone"`
	TaxShippingAndHandling bool `json:"tax_shipping_and_handling"`

	Source string `json:"source"`
}

// ParseRow decodes the fields stored for zip. Short rows decode the missing rates as zero.
func ParseRow(zip string, fields []string) (Rate, error) {
	rate := Rate{
		ZipCode:                zip,
		State:                  field(fields, colState),
		County:                 field(fields, colCounty),
		City:                   field(fields, colCity),
		TaxShippingAlone:       flag(field(fields, colTaxShippingAlone)),
		TaxShippingAndHandling: flag(field(fields, colTaxShippingAndHandling)),
		Source:                 SourceCache,
	}

	targets := []struct {
		col  int
		name string
		dst  *decimal.Decimal
	}{
		{colStateSales, "state_sales", &rate.StateSales},
		{colStateUse, "state_use", &rate.StateUse},
		{colCountySales, "county_sales", &rate.CountySales},
		{colCountyUse, "county_use", &rate.CountyUse},
		{colCitySales, "city_sales", &rate.CitySales},
		{colCityUse, "city_use", &rate.CityUse},
		{colTotalSales, "total_sales", &rate.TotalSales},
		{colTotalUse, "total_use", &rate.TotalUse},
	}
	for _, tgt := range targets {
		raw := field(fields, tgt.col)
		v, err := dec.ParseRate(raw)
		if err != nil {
			return Rate{}, fmt.Errorf("%w: ZIP %s has %s %q", ErrCorruptRow, zip, tgt.name, raw)
		}
		*tgt.dst = v
	}

	// Some extracts leave the total blank; derive it from the jurisdictions.
	if rate.TotalSales.IsZero() {
		rate.TotalSales = dec.Sum([]decimal.Decimal{rate.StateSales, rate.CountySales, rate.CitySales})
	}
	if rate.TotalUse.IsZero() {
		rate.TotalUse = dec.Sum([]decimal.Decimal{rate.StateUse, rate.CountyUse, rate.CityUse})
	}

	return rate, nil
}

func field(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func flag(s string) bool {
	switch strings.ToUpper(s) {
	case "Y", "YES", "TRUE", "1":
		return true
	default:
		return false
	}
}

// Jurisdiction is one line of the remote by-postal-code rate response.
type Jurisdiction struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Rate float64 `json:"rate"`
}

// PostalRates is the remote by-postal-code rate response.
type PostalRates struct {
	TotalRate float64        `json:"totalRate"`
	Rates     []Jurisdiction `json:"rates"`
}

// Rate converts the remote response into the same shape a cached row decodes to.
// Special districts only contribute to the total.
func (p PostalRates) Rate(zip string) Rate {
	rate := Rate{
		ZipCode:    zip,
		TotalSales: dec.FromFloat(p.TotalRate),
		Source:     SourceRemote,
	}
	for _, j := range p.Rates {
		v := dec.FromFloat(j.Rate)
		switch strings.ToLower(j.Type) {
		case "state":
			rate.StateSales = rate.StateSales.Add(v)
		case "county":
			rate.CountySales = rate.CountySales.Add(v)
		case "city":
			rate.CitySales = rate.CitySales.Add(v)
		}
	}
	return rate
}
