package agent

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogger_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewQueryLogger(&buf)

	l.Log(QueryLogEntry{
		Query:      "what is RAG?",
		NumResults: 3,
		Duration:   150 * time.Millisecond,
	})

	var entry QueryLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "what is RAG?", entry.Query)
	assert.Equal(t, 3, entry.NumResults)
	assert.Equal(t, int64(150), entry.LatencyMs)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestFileQueryLogger_CreatesFile(t *testing.T) {
	path := t.TempDir() + "/logs/queries.jsonl"
	l, err := NewFileQueryLogger(path)
	require.NoError(t, err)
	l.Log(QueryLogEntry{Query: "hello"})
	assert.FileExists(t, path)
}
