// Package chunking provides sentence-aware text splitting with bounded,
// overlapping chunks.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping characters
// carried into the next chunk.
const DefaultOverlap = 50

// DefaultMinChunkSize is the default minimum chunk length; shorter
// chunks are dropped, not padded.
const DefaultMinChunkSize = 100

// Default search window around a nominal cut when looking for a
// sentence boundary. The values carry no semantic weight; they are
// tunable via options.
const (
	DefaultBoundaryBack    = 100
	DefaultBoundaryForward = 50
)

// Splitter splits document text into bounded, overlapping,
// sentence-aware chunks. For every cut that is not at end of text it
// searches a window around the nominal boundary for a sentence
// terminator followed by whitespace and snaps the cut there, avoiding
// mid-sentence breaks. Every returned chunk has length in
// [minChunkSize, chunkSize+boundaryForward].
type Splitter struct {
	chunkSize       int
	overlap         int
	minChunkSize    int
	boundaryBack    int
	boundaryForward int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the nominal chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum chunk length; shorter chunks are
// dropped.
func WithMinChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.minChunkSize = size
		}
	}
}

// WithBoundaryWindow sets how far before and after a nominal cut the
// splitter searches for a sentence boundary.
func WithBoundaryWindow(back, forward int) Option {
	return func(s *Splitter) {
		if back >= 0 {
			s.boundaryBack = back
		}
		if forward >= 0 {
			s.boundaryForward = forward
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:       DefaultChunkSize,
		overlap:         DefaultOverlap,
		minChunkSize:    DefaultMinChunkSize,
		boundaryBack:    DefaultBoundaryBack,
		boundaryForward: DefaultBoundaryForward,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured nominal chunk size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// MinChunkSize returns the configured minimum chunk length.
func (s *Splitter) MinChunkSize() int { return s.minChunkSize }

// Split splits text into ordered chunks. Empty or sub-minimum input
// yields no chunks.
func (s *Splitter) Split(text string) []string {
	n := len(text)
	if n == 0 {
		return nil
	}

	estimated := n/(s.chunkSize-s.overlap) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < n {
		// Never cut into the middle of a multi-byte rune.
		for start < n && !utf8.RuneStart(text[start]) {
			start++
		}
		if start >= n {
			break
		}

		end := start + s.chunkSize
		if end >= n {
			end = n
		} else {
			end = s.snapToSentence(text, start, end)
			for end < n && !utf8.RuneStart(text[end]) {
				end++
			}
		}

		piece := strings.TrimSpace(text[start:end])
		if len(piece) >= s.minChunkSize {
			chunks = append(chunks, piece)
		}

		if end >= n {
			break
		}
		// Step back by the overlap so cross-chunk context is preserved.
		start = end - s.overlap
	}

	return chunks
}

// snapToSentence looks for a sentence terminator followed by whitespace
// within the boundary window around end and returns the index just
// after the terminator. The latest such boundary wins. A snap that
// would not advance the walk past start is rejected, otherwise small
// chunk sizes could stall on a boundary inside the overlap region.
func (s *Splitter) snapToSentence(text string, start, end int) int {
	lo := end - s.boundaryBack
	if lo < start {
		lo = start
	}
	hi := end + s.boundaryForward
	if hi > len(text) {
		hi = len(text)
	}

	for i := hi - 1; i > lo; i-- {
		if isSentenceTerminator(text[i-1]) && isWhitespace(text[i]) {
			if i-s.overlap <= start {
				break
			}
			return i
		}
	}
	return end
}

func isSentenceTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
