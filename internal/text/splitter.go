package text

import "strings"

// Splitter cuts text into chunks of at most Size characters, carrying
// Overlap trailing characters from one chunk into the next. It prefers to
// break on paragraph boundaries, then lines, then words, falling back to a
// hard character cut for pathological unbroken runs.
type Splitter struct {
	Size    int
	Overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{Size: size, Overlap: overlap}
}

var separators = []string{"\n\n", "\n", " "}

// Split returns the chunk sequence for text. Empty or whitespace-only input
// yields no chunks.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= s.Size {
		return []string{text}
	}

	pieces := splitRecursive(text, s.Size, separators)
	return s.merge(pieces)
}

// splitRecursive breaks text on the first separator that helps, recursing
// into oversized fragments with the remaining separators.
func splitRecursive(text string, size int, seps []string) []string {
	if len(text) <= size {
		return []string{text}
	}
	if len(seps) == 0 {
		// Hard cut: no separator left to respect.
		var out []string
		for len(text) > size {
			out = append(out, text[:size])
			text = text[size:]
		}
		if text != "" {
			out = append(out, text)
		}
		return out
	}

	var out []string
	for _, part := range strings.Split(text, seps[0]) {
		if part == "" {
			continue
		}
		if len(part) <= size {
			out = append(out, part)
			continue
		}
		out = append(out, splitRecursive(part, size, seps[1:])...)
	}
	return out
}

// merge packs pieces back into chunks up to Size, seeding each new chunk
// with the overlap tail of the previous one.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var b strings.Builder
	pending := false // a piece has been added since the last flush

	flush := func() {
		chunk := strings.TrimSpace(b.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		b.Reset()
		pending = false
		if s.Overlap > 0 && chunk != "" {
			tail := chunk
			if len(tail) > s.Overlap {
				tail = tail[len(tail)-s.Overlap:]
				// Avoid starting the next chunk mid-word.
				if i := strings.IndexByte(tail, ' '); i >= 0 && i < len(tail)-1 {
					tail = tail[i+1:]
				}
			}
			b.WriteString(tail)
		}
	}

	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if pending && b.Len()+len(piece)+1 > s.Size {
			flush()
		}
		// The overlap seed counts against the budget too. When the tail
		// plus the piece would not fit, drop the tail rather than emit an
		// oversized chunk.
		if !pending && b.Len() > 0 && b.Len()+len(piece)+1 > s.Size {
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(piece)
		pending = true
	}
	if pending {
		if chunk := strings.TrimSpace(b.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
