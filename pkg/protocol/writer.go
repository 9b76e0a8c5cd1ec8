package protocol

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Writer serialises messages to an io.Writer, one line each. It is safe for
// concurrent use; lines from different goroutines never interleave.
type Writer struct {
	mu  sync.Mutex
	out *bufio.Writer
	now func() time.Time
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w), now: time.Now}
}

// Write encodes msg as a single line and flushes it.
func (w *Writer) Write(msg Message) error {
	line, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msg.Type, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(line); err != nil {
		return fmt.Errorf("write %s message: %w", msg.Type, err)
	}
	if err := w.out.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s message: %w", msg.Type, err)
	}
	return w.out.Flush()
}

// Spec writes the connector config schema.
func (w *Writer) Spec(schema map[string]any) error {
	return w.Write(Message{Type: SpecMessage, Spec: &Spec{ConnectionSpecification: schema}})
}

// ConnectionStatus writes the outcome of a connectivity check. errs is omitted when nil.
func (w *Writer) ConnectionStatus(status Status, message string, errs any) error {
	return w.Write(Message{
		Type:             ConnectionStatusMessage,
		ConnectionStatus: &ConnectionStatus{Status: status, Message: message, Errors: errs},
	})
}

// Catalog writes one full-refresh stream entry per name, in order.
func (w *Writer) Catalog(names []string) error {
	streams := make([]Stream, len(names))
	for i, name := range names {
		streams[i] = NewStream(name)
	}
	return w.Write(Message{Type: CatalogMessage, Catalog: &Catalog{Streams: streams}})
}

// Record writes one record of stream stamped with the current time in milliseconds.
func (w *Writer) Record(stream string, data map[string]any) error {
	return w.Write(Message{
		Type:   RecordMessage,
		Record: &Record{Stream: stream, Data: data, EmittedAt: w.now().UnixMilli()},
	})
}

// Log writes a LOG message.
func (w *Writer) Log(level Level, message string) error {
	return w.Write(Message{Type: LogMessage, Log: &Log{Level: level, Message: message}})
}
