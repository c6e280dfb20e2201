package main

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/autosave"
	"github.com/atinyakov/NoteKeeper/internal/client"
	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long:  `List active notes, pinned first. Use --trash to list the trash instead.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		trash, _ := cmd.Flags().GetBool("trash")
		tag, _ := cmd.Flags().GetString("tag")
		search, _ := cmd.Flags().GetString("search")

		notes, err := api.ListNotes(cmd.Context(), models.ListFilter{Deleted: trash, TagID: tag, Query: search})
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}
		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return nil
		}
		for _, n := range notes {
			fmt.Print(client.FormatNoteListItem(n))
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title> [text...]",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		pinned, _ := cmd.Flags().GetBool("pin")
		in := models.NoteInput{Title: &args[0], Pinned: pinned}
		if len(args) > 1 {
			content := "<p>" + html.EscapeString(strings.Join(args[1:], " ")) + "</p>"
			in.Content = &content
		}
		note, err := api.CreateNote(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		fmt.Println(client.Success("Created note " + note.ID))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Long:  `Display a note's content rendered as Markdown.`,
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		note, err := api.GetNote(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		tags, _ := api.ListNoteTags(ctx, note.ID)
		items, _ := api.ListMedia(ctx, note.ID)

		fmt.Print(client.FormatNoteHeader(note, tags))
		fmt.Print(client.RenderContent(note.ContentOrEmpty()))
		fmt.Print(client.FormatMediaList(items))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note interactively",
	Long:  "Append paragraphs line by line. Changes are saved automatically once typing pauses.\n\n" + client.EditorHelp,
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		note, err := api.GetNote(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get note: %w", err)
		}
		delay, _ := cmd.Flags().GetDuration("delay")

		fmt.Print(client.FormatNoteHeader(note, nil))
		fmt.Print(client.RenderContent(note.ContentOrEmpty()))
		fmt.Println(client.Faint("Editing. Type :help for commands."))

		editor := client.NewEditor(ctx, api, note, clock.Real(), delay, os.Stdout, zap.NewNop())
		return editor.Run(ctx, os.Stdin)
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin or unpin a note",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")
		pinned := !off
		if _, err := api.UpdateNote(cmd.Context(), args[0], models.NotePatch{Pinned: &pinned}); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		fmt.Println(client.Success("Updated " + args[0]))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Move a note to the trash",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.DeleteNote(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Println(client.Success("Moved to trash"))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a note from the trash",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.RestoreNote(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to restore note: %w", err)
		}
		fmt.Println(client.Success("Restored"))
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge [id]",
	Short: "Delete a note for good, or empty the whole trash",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if err := api.PurgeNote(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to purge note: %w", err)
			}
			fmt.Println(client.Success("Deleted permanently"))
			return nil
		}

		results, err := api.EmptyTrash(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to empty trash: %w", err)
		}
		failed := 0
		for _, r := range results {
			if !r.OK() {
				failed++
				fmt.Println(client.Failure(r.NoteID + ": " + r.Error))
			}
		}
		fmt.Println(client.Success(fmt.Sprintf("Deleted %d of %d notes", len(results)-failed, len(results))))
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("trash", false, "list the trash")
	listCmd.Flags().StringP("tag", "T", "", "filter by tag ID")
	listCmd.Flags().StringP("search", "s", "", "search title and content")
	addCmd.Flags().Bool("pin", false, "pin the note")
	editCmd.Flags().Duration("delay", autosave.DefaultDelay, "auto-save delay")
	pinCmd.Flags().Bool("off", false, "unpin instead")

	rootCmd.AddCommand(listCmd, addCmd, showCmd, editCmd, pinCmd, rmCmd, restoreCmd, purgeCmd)
}

