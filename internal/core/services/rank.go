package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0.0 for mismatched lengths or zero-magnitude vectors so that
// degenerate inputs rank below the relevance threshold instead of
// producing NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// sortResults orders results by score descending, breaking ties by
// (document ID, chunk index) ascending so equal-scored rankings are
// deterministic across runs.
func sortResults(results []domain.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.DocumentID != results[j].Chunk.DocumentID {
			return results[i].Chunk.DocumentID < results[j].Chunk.DocumentID
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
}

// rankBySimilarity scores chunks against a query vector by cosine
// similarity. Chunks without a stored vector are skipped, scores below
// threshold are dropped, and at most topK results are returned.
func rankBySimilarity(query []float32, chunks []domain.Chunk, threshold float64, topK int) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		if !c.Embedding.Present() {
			continue
		}
		score := cosineSimilarity(query, c.Embedding.Vector)
		if score < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			Chunk: c,
			Score: score,
			Type:  domain.SearchTypeSemantic,
		})
	}

	sortResults(results)
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// queryTerms tokenises a query into distinct lowercase terms. Tokens are
// runs of letters and digits; punctuation separates them.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// rankByKeywords scores chunks by the fraction of distinct query terms
// that appear in the chunk text. A chunk matching 2 of 4 query terms
// scores 0.5. Chunks matching no terms are dropped.
func rankByKeywords(query string, chunks []domain.Chunk, topK int) []domain.SearchResult {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return []domain.SearchResult{}
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		text := strings.ToLower(c.Text)
		matched := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			Chunk: c,
			Score: float64(matched) / float64(len(terms)),
			Type:  domain.SearchTypeKeyword,
		})
	}

	sortResults(results)
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
