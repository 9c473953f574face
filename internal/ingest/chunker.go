package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
	"github.com/tanvigunjal/Multimodal-RAG/internal/text"
	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// Chunker folds extracted elements and their enrichments into the final
// chunk list. Consecutive text is buffered, grouped by page, and split;
// tables and images become one chunk each carrying their description.
type Chunker struct {
	docPath  string
	docName  string
	docID    string
	splitter *text.Splitter
}

func NewChunker(docPath string, splitter *text.Splitter) *Chunker {
	name := filepath.Base(docPath)
	return &Chunker{
		docPath:  docPath,
		docName:  name,
		docID:    strings.TrimSuffix(name, filepath.Ext(name)),
		splitter: splitter,
	}
}

// bufferedText is one textual element's content with its resolved page.
type bufferedText struct {
	text string
	page *int
}

// CreateChunks walks the elements in document order. The running section
// heading is updated on every title; the text buffer is flushed whenever a
// non-text element interrupts the flow or the document ends.
func (c *Chunker) CreateChunks(elements []element.Element, enriched map[string]string) []Chunk {
	var chunks []Chunk
	var buffer []bufferedText

	currentSection := "Introduction"
	var currentPage *int
	chunkIndex := 0

	for i, el := range elements {
		isLast := i == len(elements)-1

		if el.Kind == element.KindTitle {
			currentSection = el.Text
		}

		if el.IsTextual() {
			page := el.Page(currentPage)
			buffer = append(buffer, bufferedText{text: el.Text, page: page})
			currentPage = page
		}

		if !el.IsTextual() || isLast {
			chunks, chunkIndex = c.flushBuffer(chunks, buffer, currentSection, chunkIndex)
			buffer = nil
		}

		switch el.Kind {
		case element.KindImage:
			desc := descriptionFor(enriched, el.ID)
			record := c.newRecord(el, chunkIndex, "image", currentSection, desc)
			record.ImagePath = el.ImagePath
			chunks = append(chunks, Chunk{Content: desc, Record: record})
			chunkIndex++
		case element.KindTable:
			desc := descriptionFor(enriched, el.ID)
			record := c.newRecord(el, chunkIndex, "table", currentSection, desc)
			record.TableHTML = el.TableHTML
			chunks = append(chunks, Chunk{Content: desc, Record: record})
			chunkIndex++
		}
	}

	slog.Info("chunking complete", "document", c.docName, "chunks", len(chunks))
	return chunks
}

// flushBuffer groups the buffered text by resolved page (preserving the
// order pages were first seen), joins each group with blank lines, and
// splits it into sized chunks.
func (c *Chunker) flushBuffer(chunks []Chunk, buffer []bufferedText, section string, chunkIndex int) ([]Chunk, int) {
	if len(buffer) == 0 {
		return chunks, chunkIndex
	}

	type pageGroup struct {
		page  *int
		texts []string
	}
	var groups []*pageGroup
	byKey := map[string]*pageGroup{}

	for _, item := range buffer {
		key := "none"
		if item.page != nil {
			key = fmt.Sprintf("p%d", *item.page)
		}
		g, ok := byKey[key]
		if !ok {
			g = &pageGroup{page: item.page}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.texts = append(g.texts, item.text)
	}

	for _, g := range groups {
		full := strings.Join(g.texts, "\n\n")
		for _, segment := range c.splitter.Split(full) {
			record := vector.ChunkRecord{
				ChunkID:        c.chunkID(g.page, chunkIndex),
				FilePath:       c.docPath,
				FileName:       c.docName,
				PageNumber:     g.page,
				SectionHeading: section,
				ElementType:    "text",
				FigureID:       figureID("text", g.page, chunkIndex),
				Modality:       "text",
			}
			chunks = append(chunks, Chunk{Content: segment, Record: record})
			chunkIndex++
		}
	}
	return chunks, chunkIndex
}

func (c *Chunker) newRecord(el element.Element, index int, elType, section, summary string) vector.ChunkRecord {
	return vector.ChunkRecord{
		ChunkID:        c.chunkID(el.PageNumber, index),
		FilePath:       c.docPath,
		FileName:       c.docName,
		PageNumber:     el.PageNumber,
		SectionHeading: section,
		ElementType:    elType,
		FigureID:       figureID(elType, el.PageNumber, index),
		Summary:        summary,
		Modality:       elType,
	}
}

// chunkID is deterministic: the same extraction yields the same ids on
// every run. Without a page the id degrades to the pageless form.
func (c *Chunker) chunkID(page *int, index int) string {
	if page != nil {
		return fmt.Sprintf("%s_p%d_c%d", c.docID, *page, index)
	}
	return fmt.Sprintf("%s_c%d", c.docID, index)
}

func figureID(elType string, page *int, index int) string {
	capitalized := strings.ToUpper(elType[:1]) + elType[1:]
	if page != nil {
		return fmt.Sprintf("%s_%d_%d", capitalized, *page, index)
	}
	return fmt.Sprintf("%s_%d", capitalized, index)
}

func descriptionFor(enriched map[string]string, id string) string {
	if desc, ok := enriched[id]; ok {
		return desc
	}
	return NotAvailable
}
