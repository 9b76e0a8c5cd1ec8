package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/Sternrassler/healthie-source/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(n int) []extract.Record {
	out := make([]extract.Record, n)
	for i := range out {
		out[i] = extract.Record{"id": i}
	}
	return out
}

// scriptedFetch serves page sizes in order and records the variables of every call.
type scriptedFetch struct {
	sizes []int
	calls []map[string]any
	errAt int // 1-based call index that fails, 0 for never
}

func (s *scriptedFetch) fetch(_ context.Context, vars map[string]any) ([]extract.Record, error) {
	s.calls = append(s.calls, vars)
	if s.errAt == len(s.calls) {
		return nil, errors.New("boom")
	}
	i := len(s.calls) - 1
	if i >= len(s.sizes) {
		return records(0), nil
	}
	return records(s.sizes[i]), nil
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "none", ModeNone.String())
	assert.Equal(t, "offset", ModeOffset.String())
	assert.Equal(t, "offset_paginate", ModeOffsetPaginate.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}

func TestStart(t *testing.T) {
	assert.Equal(t, Cursor{}, Start(ModeNone))
	assert.Equal(t, Cursor{}, Start(ModeOffset))
	assert.Equal(t, Cursor{Paginate: true}, Start(ModeOffsetPaginate))
}

func TestCursor_Variables(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		cursor Cursor
		want   map[string]any
	}{
		{"none", ModeNone, Cursor{Offset: 10}, map[string]any{}},
		{"offset first page", ModeOffset, Cursor{}, map[string]any{"offset": 0}},
		{"offset later page", ModeOffset, Cursor{Offset: 30}, map[string]any{"offset": 30}},
		{"paginate first page", ModeOffsetPaginate, Start(ModeOffsetPaginate), map[string]any{"offset": 0, "should_paginate": true}},
		{"paginate later page", ModeOffsetPaginate, Cursor{Offset: 10, Paginate: true}, map[string]any{"offset": 10, "should_paginate": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cursor.Variables(tt.mode))
		})
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		cursor   Cursor
		n        int
		want     Cursor
		wantMore bool
	}{
		{"none stops after full page", ModeNone, Cursor{}, 25, Cursor{}, false},
		{"none stops after empty page", ModeNone, Cursor{}, 0, Cursor{}, false},
		{"offset advances by page size", ModeOffset, Cursor{Offset: 10}, 7, Cursor{Offset: 17}, true},
		{"offset short page still continues", ModeOffset, Cursor{Offset: 0}, 1, Cursor{Offset: 1}, true},
		{"offset empty page stops", ModeOffset, Cursor{Offset: 50}, 0, Cursor{Offset: 50}, false},
		{"paginate keeps the flag", ModeOffsetPaginate, Cursor{Offset: 0, Paginate: true}, 10, Cursor{Offset: 10, Paginate: true}, true},
		{"paginate empty page stops", ModeOffsetPaginate, Cursor{Offset: 10, Paginate: true}, 0, Cursor{Offset: 10, Paginate: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, more := Next(tt.mode, tt.cursor, tt.n)
			assert.Equal(t, tt.wantMore, more)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPages_OffsetArithmetic(t *testing.T) {
	for _, mode := range []Mode{ModeOffset, ModeOffsetPaginate} {
		t.Run(mode.String(), func(t *testing.T) {
			f := &scriptedFetch{sizes: []int{10, 10, 3, 0}}

			var offsets []int
			total := 0
			for page, err := range Pages(context.Background(), mode, f.fetch) {
				require.NoError(t, err)
				offsets = append(offsets, page.Cursor.Offset)
				total += len(page.Records)
			}

			assert.Equal(t, []int{0, 10, 20, 23}, offsets)
			assert.Equal(t, 23, total)
			require.Len(t, f.calls, 4, "a short page must be followed by one more fetch")
			for i, vars := range f.calls {
				assert.Equal(t, offsets[i], vars[VarOffset])
				if mode == ModeOffsetPaginate {
					assert.Equal(t, true, vars[VarShouldPaginate])
				} else {
					assert.NotContains(t, vars, VarShouldPaginate)
				}
			}
		})
	}
}

func TestPages_FiftyThenEmpty(t *testing.T) {
	f := &scriptedFetch{sizes: []int{50, 0}}

	emitted := 0
	for page, err := range Pages(context.Background(), ModeOffset, f.fetch) {
		require.NoError(t, err)
		emitted += len(page.Records)
	}

	assert.Len(t, f.calls, 2)
	assert.Equal(t, 50, emitted)
}

func TestPages_NoneFetchesOnce(t *testing.T) {
	for _, size := range []int{0, 1, 100} {
		f := &scriptedFetch{sizes: []int{size, size, size}}
		pages := 0
		for _, err := range Pages(context.Background(), ModeNone, f.fetch) {
			require.NoError(t, err)
			pages++
		}
		assert.Equal(t, 1, pages)
		assert.Len(t, f.calls, 1)
		assert.Empty(t, f.calls[0])
	}
}

func TestPages_ErrorEndsSequence(t *testing.T) {
	f := &scriptedFetch{sizes: []int{5, 5, 5}, errAt: 2}

	var errs []error
	pages := 0
	for page, err := range Pages(context.Background(), ModeOffset, f.fetch) {
		if err != nil {
			errs = append(errs, err)
			assert.Empty(t, page.Records)
			assert.Equal(t, 5, page.Cursor.Offset)
			continue
		}
		pages++
	}

	assert.Equal(t, 1, pages)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "boom")
	assert.Len(t, f.calls, 2)
}

func TestPages_ConsumerStops(t *testing.T) {
	f := &scriptedFetch{sizes: []int{5, 5, 5, 5}}

	for range Pages(context.Background(), ModeOffset, f.fetch) {
		break
	}
	assert.Len(t, f.calls, 1)
}

func TestPages_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &scriptedFetch{sizes: []int{5, 5, 5}}

	var gotErr error
	for _, err := range Pages(ctx, ModeOffset, f.fetch) {
		if err != nil {
			gotErr = err
			break
		}
		cancel()
	}

	assert.ErrorIs(t, gotErr, context.Canceled)
	assert.Len(t, f.calls, 1)
}

func TestPages_Restartable(t *testing.T) {
	f := &scriptedFetch{sizes: []int{2, 0, 2, 0}}
	seq := Pages(context.Background(), ModeOffset, f.fetch)

	for range seq {
	}
	for range seq {
	}

	require.Len(t, f.calls, 4)
	assert.Equal(t, 0, f.calls[2][VarOffset], "each range starts from a fresh cursor")
}
