package server

import (
	"github.com/shopspring/decimal"

	"github.com/han8909227/avatax-go/pkg/avatax"
)

// HealthResponse is the response for the health endpoint
type HealthResponse struct {
	Status string             `json:"status"`
	Time   string             `json:"time"`
	Cache  avatax.CacheStatus `json:"cache"`
}

// RateResponse is the response for the rate endpoint
type RateResponse struct {
	Rate         *avatax.Rate    `json:"rate"`
	TotalPercent decimal.Decimal `json:"total_percent"`
}

// EstimateResponse is the response for the estimate endpoint
type EstimateResponse struct {
	*avatax.Estimate
}

// SyncRequest is the optional body of the sync endpoint
type SyncRequest struct {
	CompanyID int64  `json:"company_id,omitempty"`
	Date      string `json:"date,omitempty"`
}

// SyncResponse is the response for the sync endpoint
type SyncResponse struct {
	Cache      avatax.CacheStatus `json:"cache"`
	DurationMS int64              `json:"duration_ms"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
