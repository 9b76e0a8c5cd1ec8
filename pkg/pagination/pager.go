package pagination

import (
	"context"
	"iter"

	"github.com/Sternrassler/healthie-source/pkg/extract"
	"github.com/rs/zerolog/log"
)

// PageFunc fetches one page with the given request variables and returns its records.
type PageFunc func(ctx context.Context, vars map[string]any) ([]extract.Record, error)

// Page is one fetched page and the cursor it was requested with.
type Page struct {
	Cursor  Cursor
	Records []extract.Record
}

// Pages lazily walks a query from offset 0 until mode signals exhaustion.
// The first error, including context cancellation, is yielded once and ends the
// sequence. Breaking out of the range stops after the current page.
func Pages(ctx context.Context, mode Mode, fetch PageFunc) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		cur := Start(mode)
		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				yield(Page{Cursor: cur}, err)
				return
			}

			records, err := fetch(ctx, cur.Variables(mode))
			if err != nil {
				yield(Page{Cursor: cur}, err)
				return
			}

			log.Debug().
				Str("mode", mode.String()).
				Int("page", n).
				Int("offset", cur.Offset).
				Int("records", len(records)).
				Msg("Page fetched")

			if !yield(Page{Cursor: cur, Records: records}, nil) {
				return
			}

			next, more := Next(mode, cur, len(records))
			if !more {
				return
			}
			cur = next
		}
	}
}
