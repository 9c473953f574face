package agent

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/tanvigunjal/Multimodal-RAG/internal/vector"
)

var imageTagRe = regexp.MustCompile(`\[IMAGE:([^\]]+)\]`)

// OutputValidator enforces the image display contract on generated text:
// every [IMAGE:path] marker must point at an image that actually came back
// with the retrieved context.
type OutputValidator struct {
	allowed map[string]bool
}

// NewOutputValidator collects the valid image paths from the source
// documents.
func NewOutputValidator(docs []vector.Candidate) *OutputValidator {
	allowed := map[string]bool{}
	for _, d := range docs {
		if p := strings.TrimSpace(d.Record.ImagePath); p != "" {
			allowed[p] = true
		}
	}
	return &OutputValidator{allowed: allowed}
}

// AllowedPaths returns the valid image paths in sorted order.
func (v *OutputValidator) AllowedPaths() []string {
	paths := make([]string, 0, len(v.allowed))
	for p := range v.allowed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Normalize keeps [IMAGE:path] markers whose trimmed path is in the
// allowed set and removes every other marker. With no allowed paths all
// markers are stripped.
func (v *OutputValidator) Normalize(answer string) string {
	if len(v.allowed) == 0 {
		return imageTagRe.ReplaceAllString(answer, "")
	}
	return imageTagRe.ReplaceAllStringFunc(answer, func(tag string) string {
		path := strings.TrimSpace(imageTagRe.FindStringSubmatch(tag)[1])
		if v.allowed[path] {
			return "[IMAGE:" + path + "]"
		}
		slog.Warn("removing image marker with unknown path", "path", path)
		return ""
	})
}
