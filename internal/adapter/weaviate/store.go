package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tanvigunjal/Multimodal-RAG/internal/retry"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// Store wraps the Weaviate client with the three operations the pipelines
// need: a document existence check, a batched chunk write, and a nearVector
// search with an optional element-type filter. Every call retries with the
// given policy before giving up.
type Store struct {
	client *weaviate.Client
	policy retry.Policy
}

func NewStore(client *weaviate.Client, policy retry.Policy) *Store {
	return &Store{client: client, policy: policy}
}

// EnsureSchema provisions the chunk class and its payload fields.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateSchema(s.client))
}

// Exists reports whether any chunk carries the given document identity.
func (s *Store) Exists(ctx context.Context, fileName string) (bool, error) {
	where := filters.Where().
		WithPath([]string{"fileName"}).
		WithOperator(filters.Equal).
		WithValueString(fileName)

	var found bool
	err := retry.Do(ctx, s.policy, func() error {
		res, err := s.client.GraphQL().Get().
			WithClassName(vector.ClassName).
			WithWhere(where).
			WithLimit(1).
			WithFields(graphql.Field{Name: "chunkId"}).
			Do(ctx)
		if err != nil {
			return err
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("graphql error: %v", res.Errors)
		}

		found = false
		if data, ok := res.Data["Get"].(map[string]interface{}); ok {
			if chunks, ok := data[vector.ClassName].([]interface{}); ok {
				found = len(chunks) > 0
			}
		}
		return nil
	})
	return found, err
}

// AddChunks writes all chunks in one batch. Each object gets a fresh UUID;
// the deterministic chunk id lives in the payload.
func (s *Store) AddChunks(ctx context.Context, chunks []vector.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(chunks))
	for _, c := range chunks {
		objects = append(objects, &models.Object{
			ID:         strfmt.UUID(uuid.New().String()),
			Class:      vector.ClassName,
			Properties: c.Record.Properties(c.Content),
			Vector:     c.Vector,
		})
	}

	return retry.Do(ctx, s.policy, func() error {
		resp, err := s.client.Batch().ObjectsBatcher().
			WithObjects(objects...).
			Do(ctx)
		if err != nil {
			return err
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch write error: %s", r.Result.Errors.Error[0].Message)
			}
		}
		return nil
	})
}

// Search runs a nearVector top-k query. A non-empty elementType narrows
// the candidate set to that chunk type.
func (s *Store) Search(ctx context.Context, queryVector []float32, limit int, elementType string) ([]vector.Candidate, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "filePath"},
		{Name: "fileName"},
		{Name: "pageNumber"},
		{Name: "sectionHeading"},
		{Name: "elementType"},
		{Name: "figureId"},
		{Name: "summary"},
		{Name: "modality"},
		{Name: "imagePath"},
		{Name: "tableHtml"},
		{Name: "chunkId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	var results []vector.Candidate
	err := retry.Do(ctx, s.policy, func() error {
		nearVector := s.client.GraphQL().NearVectorArgBuilder().
			WithVector(queryVector)

		query := s.client.GraphQL().Get().
			WithClassName(vector.ClassName).
			WithNearVector(nearVector).
			WithLimit(limit).
			WithFields(fields...)

		if elementType != "" {
			query = query.WithWhere(filters.Where().
				WithPath([]string{"elementType"}).
				WithOperator(filters.Equal).
				WithValueString(elementType))
		}

		res, err := query.Do(ctx)
		if err != nil {
			return err
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("graphql error: %v", res.Errors)
		}

		results = nil
		if data, ok := res.Data["Get"].(map[string]interface{}); ok {
			if chunks, ok := data[vector.ClassName].([]interface{}); ok {
				for _, c := range chunks {
					props, ok := c.(map[string]interface{})
					if !ok {
						continue
					}
					cand := vector.Candidate{Record: vector.RecordFromProperties(props)}
					if content, ok := props["content"].(string); ok {
						cand.Content = content
					}
					if additional, ok := props["_additional"].(map[string]interface{}); ok {
						cand.Score = scoreOf(additional["certainty"])
					}
					results = append(results, cand)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// scoreOf tolerates the certainty arriving as float or string depending on
// server version.
func scoreOf(v interface{}) float32 {
	switch s := v.(type) {
	case float64:
		return float32(s)
	case string:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return float32(f)
		}
	}
	return 0
}
