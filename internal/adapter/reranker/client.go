package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tanvigunjal/Multimodal-RAG/internal/retry"
)

// Client ranks documents against a query with a hosted cross-encoder.
// Supported providers are "jina" and "cohere"; anything else degrades to an
// identity ranking so the pipeline keeps working without a key.
type Client struct {
	apiKey   string
	provider string
	client   *http.Client
	baseURL  string
	policy   retry.Policy
}

func NewClient(provider, apiKey string, policy retry.Policy) *Client {
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		policy:   policy,
	}
}

func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Rerank returns the indices of docs ordered by relevance to query,
// truncated to topN (topN <= 0 means no truncation).
func (c *Client) Rerank(ctx context.Context, query string, docs []string, topN int) ([]int, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	switch c.provider {
	case "jina":
		return c.rerankRemote(ctx, "https://api.jina.ai/v1/rerank", "jina-reranker-v1-base-en", query, docs, topN)
	case "cohere":
		return c.rerankRemote(ctx, "https://api.cohere.ai/v1/rerank", "rerank-english-v3.0", query, docs, topN)
	}

	// Identity ranking.
	n := len(docs)
	if topN > 0 && topN < n {
		n = topN
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices, nil
}

type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"relevance_score"`
	} `json:"results"`
}

func (c *Client) rerankRemote(ctx context.Context, url, model, query string, docs []string, topN int) ([]int, error) {
	if c.baseURL != "" {
		url = c.baseURL
	}
	if topN <= 0 || topN > len(docs) {
		topN = len(docs)
	}

	reqBody := map[string]interface{}{
		"model":     model,
		"query":     query,
		"documents": docs,
		"top_n":     topN,
	}
	if c.provider == "cohere" {
		reqBody["return_documents"] = false
	}
	jsonBody, _ := json.Marshal(reqBody)

	var result rerankResponse
	err := retry.Do(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s rerank api error: %d", c.provider, resp.StatusCode)
		}

		result = rerankResponse{}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, topN)
	for _, r := range result.Results {
		if r.Index >= 0 && r.Index < len(docs) {
			indices = append(indices, r.Index)
		}
		if len(indices) == topN {
			break
		}
	}
	return indices, nil
}
