// Package extract pulls record lists out of decoded GraphQL response data.
package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrMalformedResponse is matched by every MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed response")

// Record is a single schema-less API object, forwarded as-is.
type Record map[string]any

// FieldPath names the list field of a response's data object.
type FieldPath struct {
	// Field is the key in the top-level data object.
	Field string

	// StringEncoded marks a field whose value is a JSON string holding the list,
	// which has to be decoded a second time.
	StringEncoded bool
}

// MalformedResponseError reports a field whose value is not a record list.
type MalformedResponseError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response field %q: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response field %q: %s", e.Field, e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

var null = []byte("null")

// Extract returns the records held in data under path.
// A missing or null field yields an empty slice; any value that is not a list of
// objects yields a *MalformedResponseError.
func Extract(data map[string]json.RawMessage, path FieldPath) ([]Record, error) {
	raw, ok := data[path.Field]
	if !ok || isNull(raw) {
		return []Record{}, nil
	}

	if path.StringEncoded {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, &MalformedResponseError{Field: path.Field, Reason: "expected string-encoded list", Err: err}
		}
		raw = json.RawMessage(encoded)
		if isNull(raw) || len(bytes.TrimSpace(raw)) == 0 {
			return []Record{}, nil
		}
	}

	records, err := decodeList(raw)
	if err != nil {
		return nil, &MalformedResponseError{Field: path.Field, Reason: "expected list of objects", Err: err}
	}
	return records, nil
}

func decodeList(raw json.RawMessage) ([]Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if rec == nil {
			return nil, fmt.Errorf("item %d: null", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), null)
}
