package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes the default configuration to ~/.docrag/config.toml (or the
path given with --config) as a starting point for customisation.
Refuses to overwrite an existing file.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := file.Default().Save(path); err != nil {
		return err
	}
	cmd.Printf("Wrote default config to %s\n", path)
	return nil
}
