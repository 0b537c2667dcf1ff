package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/core/ports/driving"
)

// Flags for ingest.
var (
	ingestOwner string
	ingestID    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into the search index",
	Long: `Reads one or more files, extracts their text, chunks it and stores
the chunks for retrieval. Re-ingesting a file replaces its previous
chunks wholesale.

The document ID defaults to the file name, so repeated ingests of the
same file update it in place. Use --id to override (single file only).

Examples:
  docrag ingest --owner participant-42 care-plan.pdf
  docrag ingest --owner participant-42 notes/*.docx
  docrag ingest --owner participant-42 --id plan-2026 care-plan-v3.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner (participant) the documents belong to")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID override (single file only)")
	_ = ingestCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}
	if ingestID != "" && len(args) > 1 {
		return errors.New("--id can only be used with a single file")
	}

	ctx := context.Background()
	failed := 0
	for _, path := range args {
		if err := ingestFile(ctx, cmd, path); err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	docID := ingestID
	if docID == "" {
		docID = filepath.Base(path)
	}

	err = ragService.ProcessDocument(ctx, driving.ProcessRequest{
		DocumentID: docID,
		OwnerID:    ingestOwner,
		Content:    content,
		MIMEType:   mimeTypeFor(path),
	})
	if err != nil {
		return err
	}

	status, err := ragService.GetProcessingStatus(ctx, docID)
	if err != nil {
		return err
	}
	cmd.Printf("  %s: %d chunks stored (%d embedded)\n", docID, status.ChunkCount, status.ChunksEmbedded)
	return nil
}

// mimeTypeFor resolves a MIME hint from the file extension. Unknown
// extensions yield an empty hint and fall back to plain-text
// extraction downstream.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".log":
		return "text/plain"
	default:
		return mime.TypeByExtension(filepath.Ext(path))
	}
}
