package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/core/ports/driving"
	"github.com/planbridge-labs/docrag/internal/logger"
)

// Flags for watch.
var watchOwner string

// watchSettleDelay is how long a file must be quiet before it is
// ingested, so a file still being written isn't picked up half-done.
const watchSettleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest documents as they appear",
	Long: `Watches a directory and ingests files as they are created or
modified. The document ID is the file name, so edits replace the
previous chunks. Runs until interrupted.

Example:
  docrag watch --owner participant-42 ~/incoming-docs`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOwner, "owner", "", "owner (participant) the documents belong to")
	_ = watchCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	dir := args[0]
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	cmd.Printf("Watching %s (ctrl-c to stop)\n", dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Debounce write bursts: a timer per path fires once the file has
	// settled.
	pending := make(map[string]*time.Timer)
	ingested := make(chan string)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			path := event.Name
			if timer, exists := pending[path]; exists {
				timer.Reset(watchSettleDelay)
				continue
			}
			pending[path] = time.AfterFunc(watchSettleDelay, func() {
				select {
				case ingested <- path:
				case <-ctx.Done():
				}
			})

		case path := <-ingested:
			delete(pending, path)
			if skip, err := shouldSkip(path); skip || err != nil {
				continue
			}
			if err := watchIngest(ctx, path); err != nil {
				cmd.PrintErrf("  %s: %v\n", filepath.Base(path), err)
				continue
			}
			cmd.Printf("  ingested %s\n", filepath.Base(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// shouldSkip filters out directories and hidden/temporary files.
func shouldSkip(path string) (bool, error) {
	base := filepath.Base(path)
	if len(base) > 0 && base[0] == '.' {
		return true, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return true, err
	}
	return info.IsDir(), nil
}

func watchIngest(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ragService.ProcessDocument(ctx, driving.ProcessRequest{
		DocumentID: filepath.Base(path),
		OwnerID:    watchOwner,
		Content:    content,
		MIMEType:   mimeTypeFor(path),
	})
}
