// Package pdf provides PDF text extraction using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
	"github.com/planbridge-labs/docrag/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles PDF documents. Text is concatenated in page order.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract returns the plain text of every page, in page order.
// The underlying parser panics on some malformed files, so panics are
// converted to errors here.
func (e *Extractor) Extract(_ context.Context, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	var b strings.Builder

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page doesn't sink the document.
			logger.Warn("PDF page %d unreadable: %v", pageNum, err)
			continue
		}

		if b.Len() > 0 && pageText != "" {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}

	return b.String(), nil
}
