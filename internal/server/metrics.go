package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/han8909227/avatax-go/internal/model"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeUpstream = "upstream"
	OutcomeError    = "error"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	syncs    *prometheus.CounterVec
	reloads  *prometheus.CounterVec
	zipCodes prometheus.Gauge
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avatax",
			Name:      "lookups_total",
			Help:      "Rate and content lookups by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avatax",
			Name:      "syncs_total",
			Help:      "Offline content refreshes by outcome.",
		}, []string{"outcome"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avatax",
			Name:      "snapshot_reloads_total",
			Help:      "ZIP rate snapshot reloads triggered by the directory watcher.",
		}, []string{"outcome"}),
		zipCodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "avatax",
			Name:      "cached_zip_codes",
			Help:      "ZIP codes in the loaded rate table.",
		}),
	}
	m.registry.MustRegister(m.lookups, m.syncs, m.reloads, m.zipCodes)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLookup counts one lookup
func (m *Metrics) ObserveLookup(endpoint string, err error) {
	m.lookups.WithLabelValues(endpoint, Outcome(err)).Inc()
}

// ObserveSync counts one refresh
func (m *Metrics) ObserveSync(err error) {
	m.syncs.WithLabelValues(Outcome(err)).Inc()
}

// ObserveReload counts one watcher reload
func (m *Metrics) ObserveReload(err error) {
	m.reloads.WithLabelValues(Outcome(err)).Inc()
}

// SetZipCodes records the loaded table size
func (m *Metrics) SetZipCodes(n int) {
	m.zipCodes.Set(float64(n))
}

// Outcome classifies err for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrInvalidArgument):
		return OutcomeInvalid
	case errors.Is(err, model.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return OutcomeUpstream
	default:
		return OutcomeError
	}
}

func statusFor(err error) int {
	switch Outcome(err) {
	case OutcomeInvalid:
		return http.StatusBadRequest
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), ErrorResponse{
		Error:   http.StatusText(statusFor(err)),
		Details: err.Error(),
	})
}
