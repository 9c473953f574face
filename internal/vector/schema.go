package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassName is the single collection holding every document chunk.
const ClassName = "DocumentChunk"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema checks that the chunk class exists with every payload field
// the write and read paths filter on, creating the class or any missing
// properties as needed.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "filePath",
			DataType: []string{"string"}, // exact match
		},
		{
			Name:     "fileName",
			DataType: []string{"string"}, // document identity for the duplicate check
		},
		{
			Name:     "pageNumber",
			DataType: []string{"int"},
		},
		{
			Name:     "sectionHeading",
			DataType: []string{"text"},
		},
		{
			Name:     "elementType",
			DataType: []string{"string"}, // text | image | table
		},
		{
			Name:     "figureId",
			DataType: []string{"string"},
		},
		{
			Name:     "summary",
			DataType: []string{"text"},
		},
		{
			Name:     "modality",
			DataType: []string{"string"},
		},
		{
			Name:     "imagePath",
			DataType: []string{"string"},
		},
		{
			Name:     "tableHtml",
			DataType: []string{"text"},
		},
		{
			Name:     "chunkId",
			DataType: []string{"string"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "A chunk of an ingested document with flattened metadata",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return err
			}
		}
	}

	return nil
}
