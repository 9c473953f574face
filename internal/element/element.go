package element

// Kind identifies the variant of a content element produced by document
// partitioning.
type Kind string

const (
	KindText  Kind = "text"
	KindTitle Kind = "title"
	KindTable Kind = "table"
	KindImage Kind = "image"
)

// Element is one atomic unit extracted from a source document, in reading
// order. Elements are immutable once produced by the extractor.
type Element struct {
	ID   string
	Kind Kind
	Text string

	// PageNumber is nil when the partition backend could not resolve a page.
	// Downstream consumers inherit the nearest preceding page.
	PageNumber *int

	// TableHTML is set for table elements only.
	TableHTML string
	// ImagePath is set for image elements only, pointing at the file the
	// extractor materialized into the figures directory.
	ImagePath string
}

// IsTextual reports whether the element contributes to the running text
// buffer (prose and headings).
func (e Element) IsTextual() bool {
	return e.Kind == KindText || e.Kind == KindTitle
}

// Page resolves the element's page, falling back to the provided last known
// page when unset. Returns nil when neither is known.
func (e Element) Page(last *int) *int {
	if e.PageNumber != nil {
		return e.PageNumber
	}
	return last
}
