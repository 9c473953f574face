package vector

// ChunkRecord is the flattened payload persisted alongside every chunk.
// Its fields are the union of the document, structural, and multimodal
// metadata groups, plus the deterministic chunk id; flattening them into
// one record at design time removes any key-collision ambiguity.
type ChunkRecord struct {
	ChunkID string

	// Document metadata.
	FilePath string
	FileName string

	// Structural metadata. PageNumber is nil when no page could be
	// resolved anywhere upstream.
	PageNumber     *int
	SectionHeading string
	ElementType    string

	// Multimodal metadata. ImagePath is set for image chunks, TableHTML
	// for table chunks.
	FigureID  string
	Summary   string
	Modality  string
	ImagePath string
	TableHTML string
}

// Candidate is a retrieved chunk with its similarity score.
type Candidate struct {
	Content string
	Score   float32
	Record  ChunkRecord
}

// Chunk pairs a chunk's embeddable content and flattened record with its
// precomputed vector, ready for a batched write.
type Chunk struct {
	Content string
	Record  ChunkRecord
	Vector  []float32
}

// Properties renders the record as a Weaviate property map. Unknown page
// numbers are omitted rather than written as a sentinel.
func (r ChunkRecord) Properties(content string) map[string]interface{} {
	props := map[string]interface{}{
		"content":        content,
		"filePath":       r.FilePath,
		"fileName":       r.FileName,
		"sectionHeading": r.SectionHeading,
		"elementType":    r.ElementType,
		"figureId":       r.FigureID,
		"summary":        r.Summary,
		"modality":       r.Modality,
		"imagePath":      r.ImagePath,
		"tableHtml":      r.TableHTML,
		"chunkId":        r.ChunkID,
	}
	if r.PageNumber != nil {
		props["pageNumber"] = *r.PageNumber
	}
	return props
}

// RecordFromProperties rebuilds a ChunkRecord from a Weaviate property map.
func RecordFromProperties(props map[string]interface{}) ChunkRecord {
	str := func(key string) string {
		if v, ok := props[key].(string); ok {
			return v
		}
		return ""
	}

	r := ChunkRecord{
		ChunkID:        str("chunkId"),
		FilePath:       str("filePath"),
		FileName:       str("fileName"),
		SectionHeading: str("sectionHeading"),
		ElementType:    str("elementType"),
		FigureID:       str("figureId"),
		Summary:        str("summary"),
		Modality:       str("modality"),
		ImagePath:      str("imagePath"),
		TableHTML:      str("tableHtml"),
	}
	if v, ok := props["pageNumber"].(float64); ok {
		page := int(v)
		r.PageNumber = &page
	}
	return r
}
