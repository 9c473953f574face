package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tanvigunjal/Multimodal-RAG/internal/agent"
	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// AgentRunner starts the query pipeline and hands back the streaming
// response.
type AgentRunner interface {
	Run(ctx context.Context, query string) (*agent.StreamingResponse, error)
}

// Source is the client-facing shape of one retrieved chunk.
type Source struct {
	ChunkID        string  `json:"chunkId"`
	FileName       string  `json:"fileName"`
	PageNumber     *int    `json:"pageNumber,omitempty"`
	SectionHeading string  `json:"sectionHeading,omitempty"`
	ElementType    string  `json:"elementType"`
	Content        string  `json:"content"`
	ImagePath      string  `json:"imagePath,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	Score          float32 `json:"score"`
}

func toSources(docs []vector.Candidate) []Source {
	sources := make([]Source, len(docs))
	for i, d := range docs {
		sources[i] = Source{
			ChunkID:        d.Record.ChunkID,
			FileName:       d.Record.FileName,
			PageNumber:     d.Record.PageNumber,
			SectionHeading: d.Record.SectionHeading,
			ElementType:    d.Record.ElementType,
			Content:        d.Content,
			ImagePath:      d.Record.ImagePath,
			Summary:        d.Record.Summary,
			Score:          d.Score,
		}
	}
	return sources
}

type Handler struct {
	runner AgentRunner
}

func NewHandler(runner AgentRunner) *Handler {
	return &Handler{runner: runner}
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return "", false
	}
	if req.Query == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Query is required", http.StatusBadRequest)
		return "", false
	}
	return req.Query, true
}

// Invoke runs the pipeline to completion and returns the finalized answer
// with its sources.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}

	resp, err := h.runner.Run(r.Context(), q)
	if err != nil {
		slog.Error("query failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	answer, err := resp.Finalize()
	if err != nil {
		slog.Error("generation failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"answer":  answer,
			"sources": toSources(resp.Sources()),
		},
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Stream writes the raw validated token stream as plain text.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}

	resp, err := h.runner.Run(r.Context(), q)
	if err != nil {
		slog.Error("query failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)
	for token := range resp.Tokens() {
		if _, err := fmt.Fprint(w, token); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := resp.Err(); err != nil {
		slog.Error("stream ended with error", "error", err)
	}
}

// Events streams the answer over SSE: one sources event, token events,
// and a final done event carrying the cleaned answer.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}

	resp, err := h.runner.Run(r.Context(), q)
	if err != nil {
		slog.Error("query failed", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	writeEvent := func(event string, payload interface{}) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal SSE payload", "event", event, "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	if !writeEvent("sources", toSources(resp.Sources())) {
		return
	}
	for token := range resp.Tokens() {
		if !writeEvent("token", token) {
			return
		}
	}
	if err := resp.Err(); err != nil {
		writeEvent("error", err.Error())
		return
	}

	answer, err := resp.Finalize()
	if err != nil {
		writeEvent("error", err.Error())
		return
	}
	writeEvent("done", answer)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
