package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Flags for context.
var contextOwner string
var contextMaxLen int

var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Assemble a generation-ready context window for a query",
	Long: `Searches the owner's chunks and prints a length-bounded context
string suitable for prompting a language model, followed by the source
chunks it was assembled from.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextOwner, "owner", "", "owner (participant) to search within")
	contextCmd.Flags().IntVar(&contextMaxLen, "max-length", 0, "context budget in characters (0 uses the configured default)")
	_ = contextCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	maxLen := contextMaxLen
	if maxLen <= 0 {
		maxLen = appConfig.Search.MaxContextLength
	}

	text, sources, err := ragService.GetContext(context.Background(), contextOwner, args[0], maxLen)
	if err != nil {
		return fmt.Errorf("context assembly failed: %w", err)
	}

	if text == "" {
		cmd.Println("No relevant context found.")
		return nil
	}

	cmd.Println(text)
	cmd.Println()
	cmd.Printf("Sources (%d):\n", len(sources))
	for _, s := range sources {
		cmd.Printf("  %s #%d (%.2f, %s)\n", s.Chunk.DocumentID, s.Chunk.Index, s.Score, s.Type)
	}
	return nil
}
