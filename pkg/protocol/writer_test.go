package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m), "line %q", scanner.Text())
		out = append(out, m)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestWriter_Spec(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Spec(map[string]any{"type": "object"}))

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "SPEC", got[0]["type"])
	spec := got[0]["spec"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "object"}, spec["connectionSpecification"])
}

func TestWriter_ConnectionStatus(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.ConnectionStatus(StatusSucceeded, "", nil))
	require.NoError(t, w.ConnectionStatus(StatusFailed, "denied", []map[string]any{{"message": "Unauthorized"}}))

	got := lines(t, &buf)
	require.Len(t, got, 2)

	ok := got[0]["connectionStatus"].(map[string]any)
	assert.Equal(t, "SUCCEEDED", ok["status"])
	assert.NotContains(t, ok, "message")
	assert.NotContains(t, ok, "errors")

	failed := got[1]["connectionStatus"].(map[string]any)
	assert.Equal(t, "FAILED", failed["status"])
	assert.Equal(t, "denied", failed["message"])
	assert.Equal(t, []any{map[string]any{"message": "Unauthorized"}}, failed["errors"])
}

func TestWriter_Catalog(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Catalog([]string{"Users", "Forms"}))

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "CATALOG", got[0]["type"])

	streams := got[0]["catalog"].(map[string]any)["streams"].([]any)
	require.Len(t, streams, 2)
	users := streams[0].(map[string]any)
	assert.Equal(t, "Users", users["name"])
	assert.Equal(t, map[string]any{"type": "object"}, users["json_schema"])
	assert.Equal(t, []any{"full_refresh"}, users["supported_sync_modes"])
	assert.Equal(t, []any{[]any{"id"}}, users["source_defined_primary_key"])
	assert.Equal(t, "Forms", streams[1].(map[string]any)["name"])
}

func TestWriter_Record(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = func() time.Time { return time.UnixMilli(1700000000123) }

	require.NoError(t, w.Record("Users", map[string]any{"id": "7", "name": "Ada"}))

	raw := strings.TrimSpace(buf.String())
	assert.Equal(t,
		`{"type":"RECORD","record":{"stream":"Users","data":{"id":"7","name":"Ada"},"emitted_at":1700000000123}}`,
		raw)
}

func TestWriter_Log(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Log(LevelError, "sync Users at offset 10: boom"))

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "LOG", got[0]["type"])
	assert.Equal(t, map[string]any{"level": "ERROR", "message": "sync Users at offset 10: boom"}, got[0]["log"])
}

func TestWriter_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perWriter {
				_ = w.Record(fmt.Sprintf("s%d", i), map[string]any{"id": j})
			}
		}()
	}
	wg.Wait()

	got := lines(t, &buf)
	assert.Len(t, got, writers*perWriter)
	for _, m := range got {
		assert.Equal(t, "RECORD", m["type"])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("closed pipe") }

func TestWriter_PropagatesWriteErrors(t *testing.T) {
	w := NewWriter(failingWriter{})
	err := w.Log(LevelInfo, "hello")
	assert.ErrorContains(t, err, "closed pipe")
}
