package document

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tanvigunjal/Multimodal-RAG/internal/middleware"
)

type Handler struct {
	service        *Service
	maxUploadBytes int64
	maxZipBytes    int64
	maxFilesPerZip int
}

func NewHandler(service *Service, maxUploadMB, maxZipMB int64, maxFilesPerZip int) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 100
	}
	if maxZipMB <= 0 {
		maxZipMB = 500
	}
	if maxFilesPerZip <= 0 {
		maxFilesPerZip = 500
	}
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadMB << 20,
		maxZipBytes:    maxZipMB << 20,
		maxFilesPerZip: maxFilesPerZip,
	}
}

// Upload accepts one or more files via multipart form field "files".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "File too large", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No files provided", http.StatusBadRequest)
		return
	}

	// Files are accepted independently: a failing file yields a failed
	// per-file result, never an error response that hides files already
	// persisted and queued.
	var results []UploadResult
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			results = append(results, UploadResult{FileName: fh.Filename, Status: StatusFailed, Error: "unable to read file"})
			continue
		}
		result, err := h.service.Accept(r.Context(), fh.Filename, f)
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close uploaded file", "file", fh.Filename, "error", closeErr)
		}
		if err != nil {
			msg := "internal error"
			if strings.Contains(err.Error(), "unsupported file type") {
				msg = err.Error()
			}
			slog.ErrorContext(r.Context(), "upload failed", "file", fh.Filename, "error", err)
			results = append(results, UploadResult{FileName: fh.Filename, Status: StatusFailed, Error: msg})
			continue
		}
		results = append(results, *result)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": results}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// UploadZip accepts a zip archive via multipart form field "file" and
// queues every supported entry.
func (h *Handler) UploadZip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxZipBytes)

	if err := r.ParseMultipartForm(h.maxZipBytes); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Archive too large", http.StatusBadRequest)
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No archive provided", http.StatusBadRequest)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close uploaded archive", "error", closeErr)
		}
	}()

	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".zip") {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "Archive must be a .zip file", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Unable to read archive", http.StatusBadRequest)
		return
	}

	results, err := h.extractAndQueue(r.Context(), data)
	if err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": results}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) extractAndQueue(ctx context.Context, data []byte) ([]UploadResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid zip archive")
	}

	entries := 0
	var results []UploadResult
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		// Reject path traversal entries outright.
		if strings.Contains(entry.Name, "..") {
			return nil, fmt.Errorf("archive entry with unsafe path: %s", entry.Name)
		}
		if !AllowedExtension(entry.Name) {
			slog.InfoContext(ctx, "skipping unsupported archive entry", "entry", entry.Name)
			continue
		}
		entries++
		if entries > h.maxFilesPerZip {
			return nil, fmt.Errorf("archive exceeds the %d file limit", h.maxFilesPerZip)
		}
		if int64(entry.UncompressedSize64) > h.maxUploadBytes {
			return nil, fmt.Errorf("archive entry too large: %s", entry.Name)
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("reading archive entry %s", entry.Name)
		}
		// Cap the read regardless of the declared size in the header.
		result, acceptErr := h.service.Accept(ctx, entry.Name, io.LimitReader(rc, h.maxUploadBytes+1))
		if closeErr := rc.Close(); closeErr != nil {
			slog.Warn("failed to close archive entry", "entry", entry.Name, "error", closeErr)
		}
		if acceptErr != nil {
			return nil, fmt.Errorf("queueing %s: %w", entry.Name, acceptErr)
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("archive contains no supported files")
	}
	return results, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": docs}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(r.Context(), w, "NOT_FOUND", "Document not found", http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": doc}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": stats}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
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
