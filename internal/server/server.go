package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	dec "github.com/han8909227/avatax-go/internal/decimal"
	"github.com/han8909227/avatax-go/internal/model"
	"github.com/han8909227/avatax-go/pkg/avatax"
)

// Lookup is the part of avatax.Client the server needs.
type Lookup interface {
	ZipRate(ctx context.Context, zip string) (*avatax.Rate, error)
	EstimateSalesTax(ctx context.Context, zip string, amount decimal.Decimal) (*avatax.Estimate, error)
	TaxContent(ctx context.Context) (json.RawMessage, error)
	RefreshOfflineContent(ctx context.Context, opts avatax.SyncOptions) error
	ReloadZipRates() error
	Status() avatax.CacheStatus
}

var _ Lookup = (*avatax.Client)(nil)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SyncTimeout  time.Duration
	Debug        bool
	Logger       zerolog.Logger
}

// DefaultConfig returns sensible server defaults
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		SyncTimeout:  5 * time.Minute,
		Logger:       zerolog.Nop(),
	}
}

// Server answers rate lookups from a loaded client
type Server struct {
	config  *Config
	router  *gin.Engine
	lookup  Lookup
	metrics *Metrics
	log     zerolog.Logger
}

// NewServer creates a new lookup server
func NewServer(config *Config, lookup Lookup) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:  config,
		router:  router,
		lookup:  lookup,
		metrics: NewMetrics(),
		log:     config.Logger,
	}
	s.metrics.SetZipCodes(lookup.Status().ZipCodes)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/rates/:zip", s.handleRate)
		v1.GET("/rates/:zip/estimate", s.handleEstimate)
		v1.GET("/content", s.handleContent)
		v1.POST("/sync", s.handleSync)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// ReloadZipRates reloads the rate table and records the outcome; it is the
// callback handed to the snapshot watcher.
func (s *Server) ReloadZipRates() error {
	err := s.lookup.ReloadZipRates()
	s.metrics.ObserveReload(err)
	if err != nil {
		s.log.Error().Err(err).Msg("ZIP rate reload failed")
		return err
	}
	status := s.lookup.Status()
	s.metrics.SetZipCodes(status.ZipCodes)
	s.log.Info().Str("path", status.ZipSnapshot).Int("zip_codes", status.ZipCodes).Msg("ZIP rates reloaded")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Cache:  s.lookup.Status(),
	})
}

func (s *Server) handleRate(c *gin.Context) {
	rate, err := s.lookup.ZipRate(c.Request.Context(), c.Param("zip"))
	s.metrics.ObserveLookup("rate", err)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RateResponse{
		Rate:         rate,
		TotalPercent: dec.Percent(rate.TotalSales),
	})
}

func (s *Server) handleEstimate(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		err := model.NewArgumentError("amount", nil, "query parameter is required")
		s.metrics.ObserveLookup("estimate", err)
		writeError(c, err)
		return
	}

	amount, err := dec.FromString(raw)
	if err != nil {
		argErr := model.NewArgumentError("amount", raw, "not a decimal number")
		s.metrics.ObserveLookup("estimate", argErr)
		writeError(c, argErr)
		return
	}

	estimate, err := s.lookup.EstimateSalesTax(c.Request.Context(), c.Param("zip"), amount)
	s.metrics.ObserveLookup("estimate", err)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, EstimateResponse{Estimate: estimate})
}

func (s *Server) handleContent(c *gin.Context) {
	content, err := s.lookup.TaxContent(c.Request.Context())
	s.metrics.ObserveLookup("content", err)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", content)
}

func (s *Server) handleSync(c *gin.Context) {
	var req SyncRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		// Chunked bodies report no length; an empty one decodes to io.EOF.
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, model.NewArgumentError("body", nil, err.Error()))
			return
		}
	}

	timeout := s.config.SyncTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	start := time.Now()
	err := s.lookup.RefreshOfflineContent(ctx, avatax.SyncOptions{
		CompanyID: req.CompanyID,
		Date:      req.Date,
	})
	s.metrics.ObserveSync(err)
	if err != nil {
		s.log.Error().Err(err).Msg("offline content refresh failed")
		writeError(c, err)
		return
	}

	status := s.lookup.Status()
	s.metrics.SetZipCodes(status.ZipCodes)
	c.JSON(http.StatusOK, SyncResponse{
		Cache:      status,
		DurationMS: time.Since(start).Milliseconds(),
	})
}
