package agent

import (
	"fmt"
	"strings"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// FormatContext renders the candidate documents into the structured block
// the generation prompt expects: fixed metadata fields per document,
// delimited by "----".
func FormatContext(docs []vector.Candidate) string {
	if len(docs) == 0 {
		return "(no context)"
	}

	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		page := ""
		if d.Record.PageNumber != nil {
			page = fmt.Sprintf("%d", *d.Record.PageNumber)
		}
		b.WriteString("file_name: " + d.Record.FileName + "\n")
		b.WriteString("page_number: " + page + "\n")
		b.WriteString("section_heading: " + d.Record.SectionHeading + "\n")
		b.WriteString("text: " + d.Content + "\n")
		b.WriteString("image_path: " + d.Record.ImagePath + "\n")
		b.WriteString("summary: " + d.Record.Summary + "\n")
		b.WriteString("----")
	}
	return b.String()
}
