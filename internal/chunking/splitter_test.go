package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultOverlap, s.overlap)
		assert.Equal(t, DefaultMinChunkSize, s.minChunkSize)
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(200), WithOverlap(20), WithMinChunkSize(10))
		assert.Equal(t, 200, s.chunkSize)
		assert.Equal(t, 20, s.overlap)
		assert.Equal(t, 10, s.minChunkSize)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, s.overlap, s.chunkSize)
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1), WithMinChunkSize(0))
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultOverlap, s.overlap)
		assert.Equal(t, DefaultMinChunkSize, s.minChunkSize)
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	s := New()
	assert.Empty(t, s.Split(""))
}

func TestSplit_SubMinimumInput(t *testing.T) {
	s := New() // min chunk size 100
	assert.Empty(t, s.Split("too short to keep"))
}

func TestSplit_SingleChunk(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20), WithMinChunkSize(10))
	text := "This is a small piece of content."

	chunks := s.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplit_LengthBounds(t *testing.T) {
	s := New(WithChunkSize(120), WithOverlap(15), WithMinChunkSize(20))

	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := b.String()

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.GreaterOrEqual(t, len(c), 20, "chunk %d below minimum", i)
		assert.LessOrEqual(t, len(c), 120+DefaultBoundaryForward, "chunk %d above maximum", i)
	}
}

func TestSplit_SnapsAtSentenceBoundary(t *testing.T) {
	s := New(WithChunkSize(60), WithOverlap(10), WithMinChunkSize(10))
	text := "First sentence here, padded a little. Second sentence follows directly after. Third one closes it out."

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	// The first cut lands after "padded a little." rather than mid-word.
	assert.True(t, strings.HasSuffix(chunks[0], "."), "chunk %q should end at a sentence boundary", chunks[0])
}

func TestSplit_OverlapPreservesContext(t *testing.T) {
	s := New(WithChunkSize(80), WithOverlap(25), WithMinChunkSize(10))

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Participant goals were reviewed during the visit and notes were recorded carefully. ")
	}
	chunks := s.Split(b.String())
	require.GreaterOrEqual(t, len(chunks), 2)

	// The tail of each chunk reappears in the next one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-10:]
		assert.Contains(t, chunks[i], tail, "chunk %d does not re-cover the tail of chunk %d", i, i-1)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New(WithChunkSize(90), WithOverlap(10), WithMinChunkSize(10))
	text := strings.Repeat("Support workers logged daily activities for the participant. ", 15)

	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplit_SmallChunkSizeScenario(t *testing.T) {
	// Small windows must still make progress and overlap correctly.
	s := New(WithChunkSize(40), WithOverlap(5), WithMinChunkSize(10))
	text := "Alice needs daily personal care. She also requires weekly community access support."

	chunks := s.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 45, "chunk %d too long: %q", i, c)
	}

	// A later chunk re-covers the tail of an earlier one.
	firstTail := chunks[0][len(chunks[0])-5:]
	assert.Contains(t, chunks[1], firstTail)
}

func TestSplit_UTF8Safe(t *testing.T) {
	s := New(WithChunkSize(40), WithOverlap(5), WithMinChunkSize(5))
	text := strings.Repeat("Grüße aus Köln an alle Teilnehmer hier. ", 10)

	for _, c := range s.Split(text) {
		assert.True(t, strings.ToValidUTF8(c, "") == c, "chunk contains invalid UTF-8: %q", c)
	}
}

func TestSplit_WhitespaceOnlyInput(t *testing.T) {
	s := New(WithMinChunkSize(10))
	assert.Empty(t, s.Split(strings.Repeat(" ", 500)))
}
