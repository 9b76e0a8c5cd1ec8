package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/healthie-source/pkg/client"
	"github.com/Sternrassler/healthie-source/pkg/config"
	"github.com/Sternrassler/healthie-source/pkg/protocol"
	"github.com/Sternrassler/healthie-source/pkg/streams"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newSpecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "spec",
		Short: "Print the connector configuration schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return protocol.NewWriter(opts.stdout).Spec(config.Schema())
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the configured credentials reach the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := protocol.NewWriter(opts.stdout)

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				opts.logger.Error().Err(err).Msg("Invalid connector config")
				return w.ConnectionStatus(protocol.StatusFailed, err.Error(), nil)
			}

			c, closeClient, err := opts.newClient(cmd.Context(), cfg)
			if err != nil {
				return w.ConnectionStatus(protocol.StatusFailed, client.ConnectFailureMessage+": "+err.Error(), nil)
			}
			defer closeClient()

			result := c.Check(cmd.Context())
			if result.OK() {
				return w.ConnectionStatus(protocol.StatusSucceeded, "", nil)
			}
			var errs any
			if len(result.Errors) > 0 {
				errs = result.Errors
			}
			return w.ConnectionStatus(protocol.StatusFailed, result.Message, errs)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "connector config file (JSON or YAML)")
	return cmd
}

func newDiscoverCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print the catalog of available streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.Load(opts.configPath); err != nil {
				return err
			}

			names := make([]string, len(streams.Definitions))
			for i, def := range streams.Definitions {
				names[i] = def.Name
			}
			return protocol.NewWriter(opts.stdout).Catalog(names)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "connector config file (JSON or YAML)")
	return cmd
}

func newReadCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Sync streams and print their records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.concurrency < 1 {
				return fmt.Errorf("concurrency must be >= 1 (got %d)", opts.concurrency)
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			c, closeClient, err := opts.newClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeClient()

			selected, err := streams.NewRegistry(c).Select(opts.streams)
			if err != nil {
				return err
			}

			return readStreams(cmd.Context(), opts, protocol.NewWriter(opts.stdout), selected)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "connector config file (JSON or YAML)")
	cmd.Flags().StringSliceVar(&opts.streams, "streams", nil, "comma separated stream names (default: all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "streams synced at the same time")
	return cmd
}

// readStreams syncs every stream, at most opts.concurrency at a time. A failed stream
// is reported as a LOG message and does not stop the others; all failures are joined
// into the returned error. Output errors abort the whole read.
func readStreams(ctx context.Context, opts *options, w *protocol.Writer, selected []*streams.Stream) error {
	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)

	for _, s := range selected {
		g.Go(func() error {
			for rec, err := range s.Sync(gctx) {
				if err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
					return w.Log(protocol.LevelError, err.Error())
				}
				if err := w.Record(s.Name(), rec); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if len(failures) > 0 {
		opts.logger.Error().Int("failed_streams", len(failures)).Msg("Read finished with failures")
		return fmt.Errorf("read: %w", errors.Join(failures...))
	}
	opts.logger.Info().Int("streams", len(selected)).Msg("Read finished")
	return nil
}

// newClient builds a client from cfg and the transport flags. The returned func
// releases the client and its Redis connection.
func (o *options) newClient(ctx context.Context, cfg *config.Config) (*client.Client, func(), error) {
	ccfg := client.DefaultConfig(cfg.BaseURL, cfg.APIKey)
	ccfg.CacheTTL = o.cacheTTL
	ccfg.MaxRetries = o.maxRetries
	ccfg.Timeout = o.timeout

	var rdb *redis.Client
	if o.redisURL != "" {
		redisOpts, err := redis.ParseURL(o.redisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(redisOpts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		o.logger.Info().Str("addr", redisOpts.Addr).Msg("Connected to Redis")
		ccfg.Redis = rdb
	}

	c, err := client.New(ccfg)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, nil, err
	}

	return c, func() {
		c.Close()
		if rdb != nil {
			rdb.Close()
		}
	}, nil
}
