package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tanvigunjal/Multimodal-RAG/internal/retry"
)

// TaskType selects the embedding task hint passed to the backend.
type TaskType string

const (
	TaskDocument TaskType = "retrieval_document"
	TaskQuery    TaskType = "retrieval_query"
)

// Embedder generates embeddings in batches of at most batchSize texts.
type Embedder struct {
	client    *genai.Client
	model     string
	batchSize int
	policy    retry.Policy
}

func NewEmbedder(ctx context.Context, apiKey, model string, batchSize int, policy retry.Policy, opts ...option.ClientOption) (*Embedder, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Embedder{client: client, model: model, batchSize: batchSize, policy: policy}, nil
}

func (e *Embedder) Close() error {
	return e.client.Close()
}

func taskTypeOf(task TaskType) genai.TaskType {
	if task == TaskQuery {
		return genai.TaskTypeRetrievalQuery
	}
	return genai.TaskTypeRetrievalDocument
}

// Embed returns one vector per input text, preserving order. Each batch is
// retried with backoff before the error is surfaced.
func (e *Embedder) Embed(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := e.client.EmbeddingModel(e.model)
	em.TaskType = taskTypeOf(task)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		var resp *genai.BatchEmbedContentsResponse
		err := retry.Do(ctx, e.policy, func() error {
			var callErr error
			resp, callErr = em.BatchEmbedContents(ctx, batch)
			return callErr
		})
		if err != nil {
			slog.ErrorContext(ctx, "batch embedding failed", "model", e.model, "batch_start", start, "error", err)
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding backend returned %d vectors for %d inputs", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			out = append(out, emb.Values)
		}
	}

	slog.DebugContext(ctx, "embeddings generated", "model", e.model, "task", string(task), "items", len(texts))
	return out, nil
}

// EmbedDocuments embeds texts with the document-retrieval task hint.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.Embed(ctx, texts, TaskDocument)
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text}, TaskQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
