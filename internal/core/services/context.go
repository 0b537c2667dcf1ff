package services

import (
	"strings"
	"unicode/utf8"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// Context assembly limits.
const (
	// DefaultMaxContextLength bounds the assembled context string.
	DefaultMaxContextLength = 2000

	// minUsefulTruncation is the smallest prefix of a chunk worth
	// including. A truncation shorter than this is noise, so the chunk
	// is skipped entirely instead.
	minUsefulTruncation = 200
)

// chunkSeparator joins chunk texts in the assembled context.
const chunkSeparator = "\n\n---\n\n"

// truncationMarker flags a chunk that was cut to fit the budget.
const truncationMarker = "..."

// assembleContext concatenates ranked chunk texts into a single context
// string of at most maxLen bytes. Chunks are taken in rank order; when
// the next chunk does not fit whole, it is truncated if the remaining
// budget allows a useful prefix, otherwise assembly stops. Returns the
// context string and the results actually included.
func assembleContext(results []domain.SearchResult, maxLen int) (string, []domain.SearchResult) {
	if maxLen <= 0 {
		maxLen = DefaultMaxContextLength
	}

	var b strings.Builder
	used := make([]domain.SearchResult, 0, len(results))

	for _, r := range results {
		sep := ""
		if b.Len() > 0 {
			sep = chunkSeparator
		}

		text := r.Chunk.Text
		if b.Len()+len(sep)+len(text) <= maxLen {
			b.WriteString(sep)
			b.WriteString(text)
			used = append(used, r)
			continue
		}

		// Doesn't fit whole: truncate if a useful prefix remains.
		remaining := maxLen - b.Len() - len(sep) - len(truncationMarker)
		if remaining < minUsefulTruncation {
			break
		}

		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := remaining
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}

		b.WriteString(sep)
		b.WriteString(text[:cut])
		b.WriteString(truncationMarker)
		used = append(used, r)
		break
	}

	return b.String(), used
}
