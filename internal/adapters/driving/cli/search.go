package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

// Flags for search.
var (
	searchOwner string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an owner's indexed documents",
	Long: `Searches the owner's chunks and prints ranked results. Semantic
search runs when an embedding provider is configured; keyword search is
the fallback.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchOwner, "owner", "", "owner (participant) to search within")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	results, err := ragService.Search(context.Background(), searchOwner, args[0], domain.SearchOptions{
		TopK: searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s #%d (%.2f, %s)\n", i+1, r.Chunk.DocumentID, r.Chunk.Index, r.Score, r.Type)
		cmd.Printf("      %s\n", snippet(r.Chunk.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet returns the first maxLen bytes of text on one line.
func snippet(text string, maxLen int) string {
	oneLine := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b == '\n' || b == '\r' || b == '\t' {
			b = ' '
		}
		oneLine = append(oneLine, b)
	}
	if len(oneLine) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(oneLine[cut]) {
			cut--
		}
		return string(oneLine[:cut]) + "..."
	}
	return string(oneLine)
}
