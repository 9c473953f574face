package agent

import (
	"regexp"
	"strings"
	"sync"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

// sourcesSplitRe finds the start of a trailing "Sources" section.
var sourcesSplitRe = regexp.MustCompile(`(?i)\n\s*Sources\b`)

// citationRe matches the inline citation shapes models produce despite the
// prompt: bracketed source references, bare numeric citations, see-style
// parentheticals, page references, file references, and stray
// "Source(s): ..." lines.
var citationRe = regexp.MustCompile(`(?i)\s*(` +
	`\[[^\]]*source[^\]]*\]|` +
	`\([^)]*source[^)]*\)|` +
	`\[\d+\]|` +
	`\(see[^)]*\)|` +
	`\(sources\)|` +
	`\([^)]*p\.\s*\d+[^)]*\)|` +
	`\([^)]*page\s*\d+[^)]*\)|` +
	`\([^)]*\.(pdf|docx?|pptx?)[^)]*\)|` +
	`\bSources?:[^\n]*` +
	`)`)

const markerOpen = "[IMAGE:"

// StreamingResponse couples a live token stream with the source documents
// the answer was generated from. Tokens pass through mostly untouched; text
// is withheld only while a possibly-open image marker is in flight, so each
// complete marker can be validated before it reaches the client.
type StreamingResponse struct {
	raw       <-chan string
	errs      <-chan error
	docs      []vector.Candidate
	validator *OutputValidator

	out  chan string
	once sync.Once

	mu        sync.Mutex
	full      strings.Builder
	streamErr error
	done      chan struct{}

	finalOnce sync.Once
	final     string
}

func NewStreamingResponse(tokens <-chan string, errs <-chan error, docs []vector.Candidate) *StreamingResponse {
	return &StreamingResponse{
		raw:       tokens,
		errs:      errs,
		docs:      docs,
		validator: NewOutputValidator(docs),
		out:       make(chan string),
		done:      make(chan struct{}),
	}
}

// Sources returns the documents the answer is grounded in.
func (r *StreamingResponse) Sources() []vector.Candidate {
	return r.docs
}

// Tokens returns the validated token stream. The channel closes when
// generation ends; Err reports a mid-stream failure afterwards.
func (r *StreamingResponse) Tokens() <-chan string {
	r.once.Do(func() { go r.pump() })
	return r.out
}

// Err reports the stream failure, if any. Valid after the token channel
// has closed.
func (r *StreamingResponse) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streamErr
}

func (r *StreamingResponse) pump() {
	defer close(r.out)
	defer close(r.done)

	var pending string
	for token := range r.raw {
		pending += token
		hold := holdIndex(pending)
		if hold > 0 {
			r.emit(pending[:hold])
			pending = pending[hold:]
		}
	}
	if pending != "" {
		r.emit(pending)
	}
	if err, ok := <-r.errs; ok && err != nil {
		r.mu.Lock()
		r.streamErr = err
		r.mu.Unlock()
	}
}

func (r *StreamingResponse) emit(text string) {
	validated := r.validator.Normalize(text)
	r.mu.Lock()
	r.full.WriteString(validated)
	r.mu.Unlock()
	if validated != "" {
		r.out <- validated
	}
}

// holdIndex returns the length of the prefix of s that is safe to emit.
// Text from the last '[' that could still grow into an [IMAGE:...] marker
// is held back until the marker closes or is disproven.
func holdIndex(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '[' {
			continue
		}
		tail := s[i:]
		if len(tail) < len(markerOpen) {
			if strings.HasPrefix(markerOpen, tail) {
				return i
			}
			continue
		}
		if strings.HasPrefix(tail, markerOpen) && !strings.Contains(tail, "]") {
			return i
		}
	}
	return len(s)
}

// Finalize drains any unconsumed stream, strips inline citations from the
// answer body while leaving the trailing Sources section untouched, and
// returns the cleaned answer. The result is memoized; repeated calls are
// cheap and identical.
func (r *StreamingResponse) Finalize() (string, error) {
	for range r.Tokens() {
	}
	<-r.done

	r.mu.Lock()
	err := r.streamErr
	text := r.full.String()
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	r.finalOnce.Do(func() {
		r.final = cleanAnswer(text)
	})
	return r.final, nil
}

func cleanAnswer(text string) string {
	answer := text
	sources := ""
	if loc := sourcesSplitRe.FindStringIndex(text); loc != nil {
		answer = text[:loc[0]]
		sources = text[loc[0]:]
	}

	cleaned := strings.TrimSpace(citationRe.ReplaceAllString(answer, ""))
	if s := strings.TrimSpace(sources); s != "" {
		return cleaned + "\n\n" + s
	}
	return cleaned
}
