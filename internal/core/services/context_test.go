package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

func resultWithText(text string) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{Text: text, CharCount: len(text)},
		Score: 0.9,
		Type:  domain.SearchTypeSemantic,
	}
}

func TestAssembleContext_AllFit(t *testing.T) {
	results := []domain.SearchResult{
		resultWithText("first chunk"),
		resultWithText("second chunk"),
	}

	text, used := assembleContext(results, 2000)
	assert.Equal(t, "first chunk"+chunkSeparator+"second chunk", text)
	assert.Len(t, used, 2)
}

func TestAssembleContext_Empty(t *testing.T) {
	text, used := assembleContext(nil, 2000)
	assert.Empty(t, text)
	assert.Empty(t, used)
}

func TestAssembleContext_NeverExceedsBudget(t *testing.T) {
	long := strings.Repeat("All progress notes are reviewed weekly. ", 30) // 1200 chars
	results := []domain.SearchResult{
		resultWithText(long),
		resultWithText(long),
		resultWithText(long),
	}

	for _, maxLen := range []int{500, 1000, 2000, 2500} {
		text, _ := assembleContext(results, maxLen)
		assert.LessOrEqual(t, len(text), maxLen, "budget %d", maxLen)
	}
}

func TestAssembleContext_TruncatesWhenUseful(t *testing.T) {
	first := strings.Repeat("a", 1500)
	second := strings.Repeat("b", 1500)

	text, used := assembleContext([]domain.SearchResult{
		resultWithText(first),
		resultWithText(second),
	}, 2000)

	require.Len(t, used, 2, "second chunk fits as a useful truncation")
	assert.LessOrEqual(t, len(text), 2000)
	assert.True(t, strings.HasSuffix(text, truncationMarker))
	assert.Contains(t, text, "b", "truncated prefix of the second chunk is included")
}

func TestAssembleContext_SkipsUselessTruncation(t *testing.T) {
	// After the first chunk only ~90 chars remain, below the useful
	// truncation floor, so assembly stops with the first chunk alone.
	first := strings.Repeat("a", 1900)
	second := strings.Repeat("b", 500)

	text, used := assembleContext([]domain.SearchResult{
		resultWithText(first),
		resultWithText(second),
	}, 2000)

	require.Len(t, used, 1)
	assert.Equal(t, first, text)
}

func TestAssembleContext_DefaultBudget(t *testing.T) {
	long := strings.Repeat("x", 3000)
	text, used := assembleContext([]domain.SearchResult{resultWithText(long)}, 0)

	require.Len(t, used, 1)
	assert.LessOrEqual(t, len(text), DefaultMaxContextLength)
	assert.True(t, strings.HasSuffix(text, truncationMarker))
}

func TestAssembleContext_TruncationOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ü", 1500) // 2 bytes per rune
	text, used := assembleContext([]domain.SearchResult{resultWithText(long)}, 2000)

	require.Len(t, used, 1)
	assert.LessOrEqual(t, len(text), 2000)
	assert.True(t, strings.HasSuffix(text, truncationMarker))
	trimmed := strings.TrimSuffix(text, truncationMarker)
	assert.True(t, strings.HasPrefix(trimmed, "ü"))
	assert.True(t, utf8.ValidString(trimmed), "truncation must not split a rune")
}
