// Package extractors selects and runs text extractors by MIME type.
//
// Extraction is best-effort: a corrupt or unsupported upload yields
// empty text, never a pipeline failure. Unknown MIME types fall back to
// plain-text extraction.
package extractors

import (
	"context"
	"sort"
	"strings"

	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
	"github.com/planbridge-labs/docrag/internal/extractors/docx"
	"github.com/planbridge-labs/docrag/internal/extractors/pdf"
	"github.com/planbridge-labs/docrag/internal/extractors/plaintext"
	"github.com/planbridge-labs/docrag/internal/logger"
)

// Registry holds the available extractors and picks one per document.
type Registry struct {
	extractors []driven.TextExtractor
	fallback   driven.TextExtractor
}

// NewRegistry creates an empty registry with the given fallback
// extractor, used when no registered extractor supports a MIME type.
func NewRegistry(fallback driven.TextExtractor) *Registry {
	return &Registry{fallback: fallback}
}

// DefaultRegistry creates a registry with the built-in extractors:
// PDF, DOCX and plain text, with plain text as the unknown-type
// fallback.
func DefaultRegistry() *Registry {
	r := NewRegistry(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor. Extractors with higher priority win when
// multiple support the same MIME type.
func (r *Registry) Register(e driven.TextExtractor) {
	r.extractors = append(r.extractors, e)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// Extract returns the plain text of a document. Any extractor error is
// logged and degraded to empty text: extraction failure is not fatal to
// the ingestion pipeline.
func (r *Registry) Extract(ctx context.Context, content []byte, mimeType string) string {
	e := r.forMIME(mimeType)

	text, err := e.Extract(ctx, content)
	if err != nil {
		logger.Warn("Extraction failed for %q: %v (treating as empty)", mimeType, err)
		return ""
	}
	return text
}

// forMIME picks the highest-priority extractor supporting the MIME
// type, or the fallback when none does.
func (r *Registry) forMIME(mimeType string) driven.TextExtractor {
	normalised := normaliseMIME(mimeType)
	for _, e := range r.extractors {
		for _, m := range e.SupportedMIMETypes() {
			if m == normalised {
				return e
			}
		}
	}
	return r.fallback
}

// normaliseMIME strips parameters and whitespace from a MIME hint,
// e.g. "text/plain; charset=utf-8" -> "text/plain".
func normaliseMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Supported reports whether a dedicated extractor exists for the MIME
// type, as opposed to the plain-text fallback.
func (r *Registry) Supported(mimeType string) bool {
	normalised := normaliseMIME(mimeType)
	for _, e := range r.extractors {
		for _, m := range e.SupportedMIMETypes() {
			if m == normalised {
				return true
			}
		}
	}
	return false
}
