package driven

import "context"

// TextExtractor produces plain text from raw document bytes.
// Each extractor handles specific MIME types (e.g. PDF, DOCX).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract returns the document's plain text. Extraction errors are
	// returned to the caller; the extractor registry degrades them to
	// empty text so a corrupt upload never fails the pipeline.
	Extract(ctx context.Context, content []byte) (string, error)
}
