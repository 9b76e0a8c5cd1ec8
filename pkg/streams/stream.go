package streams

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/Sternrassler/healthie-source/pkg/client"
	"github.com/Sternrassler/healthie-source/pkg/extract"
	"github.com/Sternrassler/healthie-source/pkg/pagination"
	"github.com/rs/zerolog"
)

// Fetcher sends one GraphQL document. *client.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, document string, variables map[string]any) (*client.Response, error)
}

// Stream is a Definition bound to a Fetcher.
type Stream struct {
	def     Definition
	fetcher Fetcher
	logger  zerolog.Logger
}

// Name returns the stream name.
func (s *Stream) Name() string {
	return s.def.Name
}

// Definition returns the stream's definition.
func (s *Stream) Definition() Definition {
	return s.def
}

// Sync lazily yields every record of the stream, page by page.
// Each call starts from offset 0. A failed page is yielded as a single error, after
// which the sequence ends; records of that page are never yielded.
func (s *Stream) Sync(ctx context.Context) iter.Seq2[extract.Record, error] {
	return func(yield func(extract.Record, error) bool) {
		logger := s.logger.With().Str("stream", s.def.Name).Logger()
		start := time.Now()
		pages, emitted := 0, 0

		logger.Info().Str("mode", s.def.Mode.String()).Msg("Stream sync started")

		for page, err := range pagination.Pages(ctx, s.def.Mode, s.fetchPage) {
			if err != nil {
				SyncFailures.WithLabelValues(s.def.Name).Inc()
				logger.Error().
					Err(err).
					Int("offset", page.Cursor.Offset).
					Int("records", emitted).
					Msg("Stream sync failed")
				yield(nil, fmt.Errorf("sync %s at offset %d: %w", s.def.Name, page.Cursor.Offset, err))
				return
			}

			pages++
			PagesFetched.WithLabelValues(s.def.Name).Inc()

			for _, rec := range page.Records {
				if !yield(rec, nil) {
					logger.Debug().Int("records", emitted).Msg("Stream sync stopped by consumer")
					return
				}
				emitted++
				RecordsEmitted.WithLabelValues(s.def.Name).Inc()
			}
		}

		SyncDuration.WithLabelValues(s.def.Name).Observe(time.Since(start).Seconds())
		logger.Info().
			Int("pages", pages).
			Int("records", emitted).
			Dur("duration", time.Since(start)).
			Msg("Stream sync finished")
	}
}

func (s *Stream) fetchPage(ctx context.Context, vars map[string]any) ([]extract.Record, error) {
	resp, err := s.fetcher.Fetch(ctx, s.def.Query.Document, vars)
	if err != nil {
		return nil, err
	}
	return extract.Extract(resp.Data, s.def.Path)
}
