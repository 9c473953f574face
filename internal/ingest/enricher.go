package ingest

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tanvigunjal/Multimodal-RAG/internal/element"
)

// Enrichment sentinels. NotAvailable marks elements with nothing to
// enrich; the failure placeholders mark elements whose enrichment call
// exhausted its retries.
const (
	NotAvailable             = "N/A"
	SummaryFailedPlaceholder = "Failed to generate summary."
	CaptionFailedPlaceholder = "Failed to generate caption."
)

// Enricher generates a description for every table and image element. All
// enrichment calls for a document run concurrently (bounded by parallel);
// a failing element gets a placeholder and never aborts its siblings.
type Enricher struct {
	llm      DescriptionGenerator
	parallel int
}

func NewEnricher(llm DescriptionGenerator, parallel int) *Enricher {
	if parallel <= 0 {
		parallel = 8
	}
	return &Enricher{llm: llm, parallel: parallel}
}

// Enrich returns the element-id → description map covering every table and
// image element in elements.
func (e *Enricher) Enrich(ctx context.Context, elements []element.Element) map[string]string {
	type target struct {
		el element.Element
	}
	var targets []target
	for _, el := range elements {
		if el.Kind == element.KindTable || el.Kind == element.KindImage {
			targets = append(targets, target{el: el})
		}
	}
	if len(targets) == 0 {
		return map[string]string{}
	}

	slog.InfoContext(ctx, "starting enrichment", "elements", len(targets))

	results := make(map[string]string, len(targets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)

	for _, tg := range targets {
		el := tg.el
		g.Go(func() error {
			desc := e.describe(gctx, el)
			mu.Lock()
			results[el.ID] = desc
			mu.Unlock()
			// Failures are recorded per element, never propagated: one bad
			// call must not cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "enrichment complete", "elements", len(results))
	return results
}

func (e *Enricher) describe(ctx context.Context, el element.Element) string {
	switch el.Kind {
	case element.KindTable:
		if el.TableHTML == "" {
			return NotAvailable
		}
		summary, err := e.llm.GenerateText(ctx, TableSummaryPrompt(el.TableHTML))
		if err != nil {
			slog.ErrorContext(ctx, "failed to summarize table", "element_id", el.ID, "error", err)
			return SummaryFailedPlaceholder
		}
		return summary
	case element.KindImage:
		if el.ImagePath == "" {
			return NotAvailable
		}
		caption, err := e.llm.CaptionImage(ctx, el.ImagePath, ImageCaptionPrompt())
		if err != nil {
			slog.ErrorContext(ctx, "failed to caption image", "element_id", el.ID, "path", el.ImagePath, "error", err)
			return CaptionFailedPlaceholder
		}
		return caption
	}
	return NotAvailable
}
