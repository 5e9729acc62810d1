package cmd

import (
	"fmt"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/han8909227/avatax-go/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	serverWatch  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup server",
	Long: `Start an HTTP server that answers lookups from the offline cache.

The API provides endpoints for:
  - GET  /api/v1/rates/:zip                 - Rates for a ZIP code
  - GET  /api/v1/rates/:zip/estimate?amount - Tax on an amount
  - GET  /api/v1/content                    - Location tax content
  - POST /api/v1/sync                       - Download and reload snapshots
  - GET  /health                            - Health check and cache status
  - GET  /metrics                           - Prometheus metrics

With --watch the ZIP rate directory is watched and the table is reloaded
whenever a new snapshot is written, for example by a scheduled "avatax sync".

Examples:
  avatax serve --zip-dir ./cache
  avatax serve --address :9090 --zip-dir ./cache --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().BoolVar(&serverWatch, "watch", false, "Reload ZIP rates when a new snapshot appears")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	config := server.DefaultConfig()
	config.Address = serverAddr
	config.ReadTimeout = readTimeout
	config.WriteTimeout = writeTimeout
	config.Debug = serverDebug
	config.Logger = logger

	srv := server.NewServer(config, client)
	ctx := cmd.Context()

	if serverWatch {
		zipDir := viper.GetString("zip-dir")
		if zipDir == "" {
			return fmt.Errorf("--watch needs --zip-dir")
		}
		watcher, err := server.NewSnapshotWatcher(zipDir, srv.ReloadZipRates, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("snapshot watcher stopped")
			}
		}()
	}

	figure.NewFigure("avatax", "cybermedium", true).Print()
	fmt.Println()

	status := client.Status()
	logger.Info().
		Str("address", serverAddr).
		Str("endpoint", client.Endpoint()).
		Int("zip_codes", status.ZipCodes).
		Bool("content_loaded", status.ContentLoaded).
		Bool("watch", serverWatch).
		Msg("starting server")

	return srv.Run(ctx)
}
