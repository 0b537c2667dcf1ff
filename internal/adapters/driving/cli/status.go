package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [document-id]",
	Short: "Show a document's processing status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs [document-id]",
	Short: "Show a document's full processing history",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobs,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document's chunks and processing history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	status, err := ragService.GetProcessingStatus(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("status lookup failed: %w", err)
	}

	cmd.Printf("Document: %s\n", status.DocumentID)
	if status.Status == domain.JobStatusNotProcessed {
		cmd.Println("Status:   not processed")
		return nil
	}

	cmd.Printf("Status:   %s (%s)\n", status.Status, status.JobType)
	cmd.Printf("Chunks:   %d stored, %d embedded\n", status.ChunkCount, status.ChunksEmbedded)
	if status.ErrorMessage != "" {
		cmd.Printf("Error:    %s\n", status.ErrorMessage)
	}
	return nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	jobs, err := ragService.ListJobs(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("job listing failed: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Println("No processing history.")
		return nil
	}

	for _, j := range jobs {
		line := fmt.Sprintf("  %s  %-8s %-10s", j.CreatedAt.Format(time.RFC3339), j.Type, j.Status)
		if j.Status == domain.JobStatusCompleted {
			line += fmt.Sprintf("  chunks=%d embedded=%d", j.ChunksCreated, j.ChunksEmbedded)
		}
		if j.ErrorMessage != "" {
			line += "  error=" + j.ErrorMessage
		}
		cmd.Println(line)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	if err := ragService.DeleteDocumentData(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted all data for %s\n", args[0])
	return nil
}
