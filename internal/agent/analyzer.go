package agent

import "strings"

// ContentPreference inspects the query for hints that the user wants a
// specific content modality. Image keywords win over table keywords when
// both appear.
func ContentPreference(query string) string {
	q := strings.ToLower(query)
	for _, kw := range []string{"image", "figure", "photo", "graph", "chart"} {
		if strings.Contains(q, kw) {
			return "image"
		}
	}
	for _, kw := range []string{"table", "grid", "data"} {
		if strings.Contains(q, kw) {
			return "table"
		}
	}
	return ""
}
