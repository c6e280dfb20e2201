package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/NoteKeeper/internal/client"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <note-id> [version-id]",
	Short: "List a note's history, or restore a version",
	Args:  cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			if _, err := api.RestoreVersion(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("failed to restore version: %w", err)
			}
			fmt.Println(client.Success("Restored version " + args[1]))
			return nil
		}

		versions, err := api.ListVersions(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list versions: %w", err)
		}
		if len(versions) == 0 {
			fmt.Println("No versions yet.")
			return nil
		}
		for _, v := range versions {
			title := "Untitled"
			if v.Title != nil && *v.Title != "" {
				title = *v.Title
			}
			fmt.Printf("  #%-3d %s  %s  %s\n", v.VersionNumber, client.Faint(v.ID),
				client.Faint(v.CreatedAt.Format("2006-01-02 15:04")), title)
		}
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [note-id] [name]",
	Short: "List tags, or tag a note",
	Long:  `Without arguments, list your tags. With a note and a name, attach the tag, creating it if needed.`,
	Args:  cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("a tag name is required")
		}
		return nil
	}),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tags, err := api.ListTags(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		if len(args) == 0 {
			for _, t := range tags {
				fmt.Printf("  %s  %s\n", client.Faint(t.ID), t.Name)
			}
			return nil
		}

		var tag *models.Tag
		for i := range tags {
			if tags[i].Name == args[1] {
				tag = &tags[i]
			}
		}
		if tag == nil {
			if tag, err = api.CreateTag(ctx, args[1]); err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
		}
		if err := api.AttachTag(ctx, args[0], tag.ID); err != nil {
			return fmt.Errorf("failed to tag note: %w", err)
		}
		fmt.Println(client.Success("Tagged " + args[0] + " with " + tag.Name))
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach <note-id> <file>",
	Short: "Attach an image, audio or video file to a note",
	Args:  cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		item, err := api.UploadMedia(cmd.Context(), args[0], models.MediaKind(kind), filepath.Base(args[1]), f)
		if err != nil {
			return fmt.Errorf("failed to upload: %w", err)
		}
		fmt.Println(client.Success("Uploaded " + item.URL))
		return nil
	},
}

func init() {
	attachCmd.Flags().StringP("kind", "k", string(models.MediaImage), "image, audio or video")
	rootCmd.AddCommand(versionsCmd, tagCmd, attachCmd)
}
