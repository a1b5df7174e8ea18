package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("ICT", 7*3600)
	log := New(&buf, loc, "info")

	log.Info("document generated", zap.String("file_name", "a.docx"), zap.Int64("size", 42))
	log.Debug("hidden")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "document generated", entry["msg"])
	assert.Equal(t, "a.docx", entry["file_name"])
	assert.Equal(t, float64(42), entry["size"])

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestNew_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, nil, "verbose")
	log.Debug("skipped")
	log.Warn("kept")
	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, time.UTC, "info")

	FromContext(context.Background(), base).Info("outside")
	FromContext(WithRequestID(context.Background(), "req-7"), base).Info("inside")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var outside, inside map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &outside))
	require.NoError(t, json.Unmarshal(lines[1], &inside))
	assert.NotContains(t, outside, "request_id")
	assert.Equal(t, "req-7", inside["request_id"])
	assert.Equal(t, "req-7", RequestID(WithRequestID(context.Background(), "req-7")))
	assert.Empty(t, RequestID(context.Background()))
}
