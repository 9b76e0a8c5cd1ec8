package pagination

import "fmt"

// Variable names carried by paginated requests.
const (
	VarOffset         = "offset"
	VarShouldPaginate = "should_paginate"
)

// Mode selects how a query continues after its first page.
type Mode int

const (
	// ModeNone fetches a single page.
	ModeNone Mode = iota

	// ModeOffset advances an offset until a page comes back empty.
	ModeOffset

	// ModeOffsetPaginate is ModeOffset with should_paginate: true on every request.
	ModeOffsetPaginate
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeOffset:
		return "offset"
	case ModeOffsetPaginate:
		return "offset_paginate"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Paginated reports whether the mode issues more than one request.
func (m Mode) Paginated() bool {
	return m == ModeOffset || m == ModeOffsetPaginate
}

// Cursor is the position of one stream sync. Cursors are values: each page
// produces a new one.
type Cursor struct {
	Offset   int
	Paginate bool
}

// Start returns the first cursor for a mode.
func Start(mode Mode) Cursor {
	return Cursor{Offset: 0, Paginate: mode == ModeOffsetPaginate}
}

// Variables returns the request variables for the cursor under mode.
func (c Cursor) Variables(mode Mode) map[string]any {
	vars := map[string]any{}
	if !mode.Paginated() {
		return vars
	}
	vars[VarOffset] = c.Offset
	if mode == ModeOffsetPaginate {
		vars[VarShouldPaginate] = true
	}
	return vars
}

// Next returns the cursor following a page of n records, and false once the
// stream is exhausted.
func Next(mode Mode, c Cursor, n int) (Cursor, bool) {
	if !mode.Paginated() || n == 0 {
		return c, false
	}
	return Cursor{
		Offset:   c.Offset + n,
		Paginate: mode == ModeOffsetPaginate,
	}, true
}
