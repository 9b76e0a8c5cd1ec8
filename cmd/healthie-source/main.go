// Command healthie-source extracts records from the Healthie GraphQL API and writes
// them to stdout as connector messages.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/healthie-source/pkg/logging"
	"github.com/Sternrassler/healthie-source/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "healthie-source: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// options holds the flag values shared by every command.
type options struct {
	configPath  string
	envFile     string
	logLevel    string
	logPretty   bool
	logFile     string
	redisURL    string
	cacheTTL    time.Duration
	maxRetries  int
	timeout     time.Duration
	metricsAddr string

	streams     []string
	concurrency int

	stdout  io.Writer
	stderr  io.Writer
	logger  zerolog.Logger
	metrics *metrics.Server
}

// run executes the command line in args and releases everything the command started.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &options{stdout: stdout, stderr: stderr}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	if opts.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := opts.metrics.Shutdown(shutdownCtx); serr != nil {
			opts.logger.Warn().Err(serr).Msg("Metrics server shutdown failed")
		}
	}
	return err
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "healthie-source",
		Short:         "Extract records from the Healthie GraphQL API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "load environment variables from this .env file")
	flags.StringVar(&opts.logLevel, "log-level", string(logging.LevelInfo), "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.logPretty, "log-pretty", false, "human-readable console logs")
	flags.StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this rotating file")
	flags.StringVar(&opts.redisURL, "redis-url", "", "redis url for shared rate limit state and, with --cache-ttl, the page cache")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "cache pages in redis for this long, scoped to endpoint and api key (default 0 disables page caching)")
	flags.IntVar(&opts.maxRetries, "max-retries", 3, "attempts per request, including the first")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of a single HTTP exchange")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newSpecCmd(opts),
		newCheckCmd(opts),
		newDiscoverCmd(opts),
		newReadCmd(opts),
	)
	return root
}

// setup loads the env file, configures logging and starts the metrics server.
func (o *options) setup() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(o.logLevel)
	cfg.Pretty = o.logPretty
	cfg.Output = o.stderr
	cfg.File.Path = o.logFile
	logging.Setup(cfg)
	o.logger = logging.NewLogger("cli")

	if o.metricsAddr != "" {
		o.metrics = metrics.NewServer(o.metricsAddr)
		go func() {
			if err := o.metrics.ListenAndServe(); err != nil {
				o.logger.Error().Err(err).Str("addr", o.metricsAddr).Msg("Metrics server failed")
			}
		}()
		o.logger.Info().Str("addr", o.metricsAddr).Msg("Serving metrics")
	}
	return nil
}
