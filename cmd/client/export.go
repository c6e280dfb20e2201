package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/NoteKeeper/internal/client"
	"github.com/atinyakov/NoteKeeper/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all notes",
	Long:  `Download every active note with its media as JSON, plain text or Markdown.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("dir")

		f, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		name, data, err := api.Export(cmd.Context(), string(f))
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Println(client.Success(fmt.Sprintf("Exported to %s (%d bytes)", path, len(data))))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "json, txt or md")
	exportCmd.Flags().StringP("dir", "o", ".", "output directory")
	rootCmd.AddCommand(exportCmd)
}
