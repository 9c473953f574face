package query_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanvigunjal/Multimodal-RAG/features/query"
	"github.com/tanvigunjal/Multimodal-RAG/internal/agent"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// MockRunner for Handler tests
type MockRunner struct {
	tokens []string
	docs   []vector.Candidate
	err    error
}

func (m *MockRunner) Run(ctx context.Context, q string) (*agent.StreamingResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	tc := make(chan string, len(m.tokens))
	ec := make(chan error, 1)
	for _, tok := range m.tokens {
		tc <- tok
	}
	close(tc)
	close(ec)
	return agent.NewStreamingResponse(tc, ec, m.docs), nil
}

func queryReq(t *testing.T, path, q string) *http.Request {
	t.Helper()
	body := strings.NewReader(`{"query": "` + q + `"}`)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestInvoke_ReturnsAnswerAndSources(t *testing.T) {
	page := 2
	runner := &MockRunner{
		tokens: []string{"The answer.", "\nSources:\na.pdf (Page 2)"},
		docs: []vector.Candidate{{
			Content: "chunk body",
			Score:   0.92,
			Record: vector.ChunkRecord{
				ChunkID:     "a_p2_c0",
				FileName:    "a.pdf",
				PageNumber:  &page,
				ElementType: "text",
			},
		}},
	}
	h := query.NewHandler(runner)

	rec := httptest.NewRecorder()
	h.Invoke(rec, queryReq(t, "/v1/query/invoke", "what is it?"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Answer  string         `json:"answer"`
			Sources []query.Source `json:"sources"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The answer.\n\nSources:\na.pdf (Page 2)", resp.Data.Answer)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "a.pdf", resp.Data.Sources[0].FileName)
	assert.Equal(t, float32(0.92), resp.Data.Sources[0].Score)
	require.NotNil(t, resp.Data.Sources[0].PageNumber)
	assert.Equal(t, 2, *resp.Data.Sources[0].PageNumber)
}

func TestInvoke_MissingQuery(t *testing.T) {
	h := query.NewHandler(&MockRunner{})
	req := httptest.NewRequest(http.MethodPost, "/v1/query/invoke", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Invoke(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoke_RunnerError(t *testing.T) {
	h := query.NewHandler(&MockRunner{err: errors.New("retrieval down")})
	rec := httptest.NewRecorder()
	h.Invoke(rec, queryReq(t, "/v1/query/invoke", "q"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStream_WritesPlainTokens(t *testing.T) {
	runner := &MockRunner{tokens: []string{"Hello ", "world."}}
	h := query.NewHandler(runner)

	rec := httptest.NewRecorder()
	h.Stream(rec, queryReq(t, "/v1/query/stream", "q"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Hello world.", rec.Body.String())
}

func TestEvents_SSEOrder(t *testing.T) {
	runner := &MockRunner{
		tokens: []string{"Answer text.", "\nSources:\nb.pdf"},
		docs:   []vector.Candidate{{Content: "c", Record: vector.ChunkRecord{FileName: "b.pdf"}}},
	}
	h := query.NewHandler(runner)

	rec := httptest.NewRecorder()
	h.Events(rec, queryReq(t, "/v1/query/events", "q"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	sourcesIdx := strings.Index(body, "event: sources")
	tokenIdx := strings.Index(body, "event: token")
	doneIdx := strings.Index(body, "event: done")
	require.GreaterOrEqual(t, sourcesIdx, 0)
	require.Greater(t, tokenIdx, sourcesIdx)
	require.Greater(t, doneIdx, tokenIdx)
	assert.Contains(t, body, `"b.pdf"`)
	assert.Contains(t, body, `data: "Answer text."`)
	assert.Contains(t, body, "Answer text.\\n\\nSources:\\nb.pdf")
}

func TestEvents_InvalidJSON(t *testing.T) {
	h := query.NewHandler(&MockRunner{})
	req := httptest.NewRequest(http.MethodPost, "/v1/query/events", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
