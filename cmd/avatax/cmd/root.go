package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/han8909227/avatax-go/pkg/avatax"
)

var (
	version = "1.0.0"

	cfgFile string
	logger  = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "avatax",
	Short: "Sync and query AvaTax offline tax content",
	Long: `avatax keeps a local copy of AvaTax reference data and answers rate
lookups from it.

It downloads:
  - a location's point-of-sale tax content (JSON)
  - the nationwide ZIP code rate table

Every flag can also be set through the environment with the AVATAX_ prefix
(AVATAX_USERNAME, AVATAX_ZIP_DIR, ...), a .env file, or a YAML file passed
with --config.

Examples:
  # Download today's ZIP rate table
  avatax sync --zip-dir /var/cache/avatax --username <token>

  # Look up rates from the cache
  avatax rates 98101 10001 --zip-dir /var/cache/avatax -f table

  # Serve lookups over HTTP and reload when a new snapshot appears
  avatax serve --zip-dir /var/cache/avatax --watch`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command; SIGINT and SIGTERM cancel its context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, avatax.ErrInvalidArgument):
		return 2
	case errors.Is(err, avatax.ErrNotFound):
		return 3
	case errors.Is(err, avatax.ErrUpstreamUnavailable):
		return 4
	case errors.Is(err, avatax.ErrUnauthorized):
		return 5
	default:
		return 1
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String("environment", "", "sandbox, production or a base URL (default production)")
	flags.String("username", "", "Account username, or a bearer token when no password is given")
	flags.String("password", "", "Account password or license key")
	flags.String("app-name", "avatax-cli", "Application name reported to AvaTax")
	flags.String("app-version", version, "Application version reported to AvaTax")
	flags.String("machine-name", "", "Machine name reported to AvaTax (default hostname)")
	flags.String("content-dir", "", "Directory for location tax content snapshots")
	flags.String("zip-dir", "", "Directory for ZIP rate snapshots")
	flags.Int64("location-id", 0, "Location whose tax content is cached")
	flags.Duration("http-timeout", 2*time.Minute, "Per-request HTTP timeout")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.StringP("format", "f", "json", "Output format (json, yaml, table)")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func initConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	viper.SetEnvPrefix("AVATAX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	switch outputFormat() {
	case formatJSON, formatYAML, formatTable:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", viper.GetString("format"))
	}
}

// newClient builds a client from the resolved configuration and binds any cache
// directories, loading existing snapshots.
func newClient() (*avatax.Client, error) {
	machine := viper.GetString("machine-name")
	if machine == "" {
		machine, _ = os.Hostname()
	}

	client, err := avatax.New(
		avatax.WithAppName(viper.GetString("app-name")),
		avatax.WithAppVersion(viper.GetString("app-version")),
		avatax.WithMachineName(machine),
		avatax.WithEnvironment(viper.GetString("environment")),
		avatax.WithHTTPTimeout(viper.GetDuration("http-timeout")),
		avatax.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if username := viper.GetString("username"); username != "" {
		if err := client.AddCredentials(username, viper.GetString("password")); err != nil {
			return nil, err
		}
	}

	if dir := viper.GetString("content-dir"); dir != "" {
		if err := client.WithRetailTaxContent(dir, viper.GetInt64("location-id")); err != nil {
			return nil, err
		}
	}
	if dir := viper.GetString("zip-dir"); dir != "" {
		if err := client.WithZipcodeTaxContent(dir); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("endpoint", client.Endpoint()).
		Str("auth_mode", string(client.AuthMode())).
		Msg("client ready")
	return client, nil
}
