package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

func docsWithImages(paths ...string) []vector.Candidate {
	docs := make([]vector.Candidate, len(paths))
	for i, p := range paths {
		docs[i] = vector.Candidate{Record: vector.ChunkRecord{ImagePath: p}}
	}
	return docs
}

func TestContentPreference(t *testing.T) {
	assert.Equal(t, "image", ContentPreference("Show me the figure on page 3"))
	assert.Equal(t, "image", ContentPreference("Is there a CHART of revenue?"))
	assert.Equal(t, "table", ContentPreference("What does the table say?"))
	assert.Equal(t, "table", ContentPreference("summarize the data"))
	assert.Equal(t, "", ContentPreference("What is the conclusion?"))
}

func TestContentPreference_ImageWinsOverTable(t *testing.T) {
	assert.Equal(t, "image", ContentPreference("show the chart of the data table"))
}

func TestNormalize_KeepsValidMarker(t *testing.T) {
	v := NewOutputValidator(docsWithImages("figures/a.png"))
	out := v.Normalize("See below.\n[IMAGE:figures/a.png]")
	assert.Equal(t, "See below.\n[IMAGE:figures/a.png]", out)
}

func TestNormalize_TrimsMarkerPath(t *testing.T) {
	v := NewOutputValidator(docsWithImages("figures/a.png"))
	out := v.Normalize("[IMAGE: figures/a.png ]")
	assert.Equal(t, "[IMAGE:figures/a.png]", out)
}

func TestNormalize_RemovesUnknownMarker(t *testing.T) {
	v := NewOutputValidator(docsWithImages("figures/a.png"))
	out := v.Normalize("Look: [IMAGE:figures/fabricated.png] done.")
	assert.Equal(t, "Look:  done.", out)
}

func TestNormalize_NoImagesStripsEverything(t *testing.T) {
	v := NewOutputValidator(nil)
	out := v.Normalize("a [IMAGE:x.png] b [IMAGE:y.png] c")
	assert.Equal(t, "a  b  c", out)
}

func TestNormalize_IgnoresNonMarkerBrackets(t *testing.T) {
	v := NewOutputValidator(docsWithImages("figures/a.png"))
	out := v.Normalize("Results [1] improved [see table].")
	assert.Equal(t, "Results [1] improved [see table].", out)
}

func TestAllowedPaths_SortedAndDeduped(t *testing.T) {
	v := NewOutputValidator(docsWithImages("b.png", "a.png", "b.png", ""))
	assert.Equal(t, []string{"a.png", "b.png"}, v.AllowedPaths())
}

func TestFormatContext(t *testing.T) {
	page := 3
	docs := []vector.Candidate{
		{
			Content: "Body text.",
			Record: vector.ChunkRecord{
				FileName:       "paper.pdf",
				PageNumber:     &page,
				SectionHeading: "Results",
				ImagePath:      "figures/f.png",
				Summary:        "A figure.",
			},
		},
	}
	out := FormatContext(docs)
	assert.Contains(t, out, "file_name: paper.pdf\n")
	assert.Contains(t, out, "page_number: 3\n")
	assert.Contains(t, out, "section_heading: Results\n")
	assert.Contains(t, out, "text: Body text.\n")
	assert.Contains(t, out, "image_path: figures/f.png\n")
	assert.Contains(t, out, "summary: A figure.\n")
	assert.Contains(t, out, "----")
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "(no context)", FormatContext(nil))
}

func TestFormatContext_MissingPageIsBlank(t *testing.T) {
	docs := []vector.Candidate{{Content: "x", Record: vector.ChunkRecord{FileName: "a.pdf"}}}
	assert.Contains(t, FormatContext(docs), "page_number: \n")
}
