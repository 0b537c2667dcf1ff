// Package plaintext provides the fallback text extractor: a UTF-8
// decode with replacement of invalid byte sequences.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents and serves as the fallback
// for unknown types.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/html",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract decodes the bytes as UTF-8, replacing invalid sequences with
// the Unicode replacement character. It never fails.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	return strings.ToValidUTF8(string(content), string(utf8.RuneError)), nil
}
