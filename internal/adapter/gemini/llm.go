package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tanvigunjal/Multimodal-RAG/internal/retry"
)

// LLM wraps a Gemini generative model for text generation, image
// captioning, and streaming answers.
type LLM struct {
	client *genai.Client
	model  string
	policy retry.Policy
}

func NewLLM(ctx context.Context, apiKey, model string, policy retry.Policy, opts ...option.ClientOption) (*LLM, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &LLM{client: client, model: model, policy: policy}, nil
}

func (l *LLM) Close() error {
	return l.client.Close()
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// GenerateText runs a single prompt through the model, with retries.
func (l *LLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	m := l.client.GenerativeModel(l.model)
	var out string
	err := retry.Do(ctx, l.policy, func() error {
		resp, callErr := m.GenerateContent(ctx, genai.Text(prompt))
		if callErr != nil {
			return callErr
		}
		out = textOf(resp)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return out, nil
}

// CaptionImage sends the image at path together with the prompt through the
// vision-capable model.
func (l *LLM) CaptionImage(ctx context.Context, imagePath, prompt string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(imagePath))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	format := strings.TrimPrefix(filepath.Ext(imagePath), ".")
	if format == "" || format == "jpeg" {
		format = "jpg"
	}

	m := l.client.GenerativeModel(l.model)
	var out string
	err = retry.Do(ctx, l.policy, func() error {
		resp, callErr := m.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, data))
		if callErr != nil {
			return callErr
		}
		out = textOf(resp)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini caption: %w", err)
	}
	return out, nil
}

// Stream starts a streaming generation and emits text fragments on the
// returned channel. The channel is closed when the stream ends; a backend
// failure mid-stream is delivered on the error channel (buffered, at most
// one value).
func (l *LLM) Stream(ctx context.Context, systemPrompt, userPrompt string) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errc := make(chan error, 1)

	m := l.client.GenerativeModel(l.model)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	go func() {
		defer close(tokens)
		defer close(errc)

		iter := m.GenerateContentStream(ctx, genai.Text(userPrompt))
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				errc <- fmt.Errorf("gemini stream: %w", err)
				return
			}
			if frag := textOf(resp); frag != "" {
				select {
				case tokens <- frag:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
		}
	}()

	return tokens, errc
}
