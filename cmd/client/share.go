package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atinyakov/NoteKeeper/internal/client"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage and open share links",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create <note-id>",
	Short: "Create a share link",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		days, _ := cmd.Flags().GetInt("expires")
		link, err := api.CreateShare(cmd.Context(), args[0], models.ShareOptions{Password: password, ExpiresInDays: days})
		if err != nil {
			return fmt.Errorf("failed to create share link: %w", err)
		}
		fmt.Print(client.FormatLink(*link))
		return nil
	},
}

var shareListCmd = &cobra.Command{
	Use:   "list <note-id>",
	Short: "List a note's share links",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := api.ListShares(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list share links: %w", err)
		}
		if len(links) == 0 {
			fmt.Println("No share links.")
			return nil
		}
		for _, l := range links {
			fmt.Print(client.FormatLink(l))
		}
		return nil
	},
}

var shareToggleCmd = &cobra.Command{
	Use:   "toggle <link-id>",
	Short: "Activate or deactivate a share link",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := api.ToggleShare(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to toggle share link: %w", err)
		}
		fmt.Print(client.FormatLink(*link))
		return nil
	},
}

var shareRevokeCmd = &cobra.Command{
	Use:   "revoke <link-id>",
	Short: "Delete a share link",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireToken()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.RevokeShare(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to revoke share link: %w", err)
		}
		fmt.Println(client.Success("Revoked"))
		return nil
	},
}

// tokenFromArg accepts a bare token or a full share URL.
func tokenFromArg(arg string) string {
	if i := strings.LastIndex(arg, "/shared/"); i >= 0 {
		arg = arg[i+len("/shared/"):]
	}
	return strings.Trim(arg, "/")
}

var shareOpenCmd = &cobra.Command{
	Use:   "open <token-or-url>",
	Short: "Open a shared note anonymously",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tok := tokenFromArg(args[0])

		var password *string
		if pw, _ := cmd.Flags().GetString("password"); pw != "" {
			password = &pw
		}
		view, err := api.ResolveShare(ctx, tok, password)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		for view.State == share.PasswordRequired.String() {
			if view.PasswordError {
				fmt.Println(client.Failure("Incorrect password"))
			}
			fmt.Print("Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return errors.New("password required")
			}
			pw := strings.TrimRight(line, "\r\n")
			if view, err = api.ResolveShare(ctx, tok, &pw); err != nil {
				return err
			}
		}

		if view.State != share.Ready.String() || view.Note == nil {
			return errors.New(view.Error)
		}
		note := &models.Note{
			Title:     view.Note.Title,
			Content:   view.Note.Content,
			CreatedAt: view.Note.CreatedAt,
			UpdatedAt: view.Note.UpdatedAt,
		}
		fmt.Print(client.FormatNoteHeader(note, nil))
		fmt.Print(client.RenderContent(note.ContentOrEmpty()))
		return nil
	},
}

func init() {
	shareCreateCmd.Flags().String("password", "", "require this password to view")
	shareCreateCmd.Flags().Int("expires", 0, "expire after this many days")
	shareOpenCmd.Flags().String("password", "", "password for protected links")

	shareCmd.AddCommand(shareCreateCmd, shareListCmd, shareToggleCmd, shareRevokeCmd, shareOpenCmd)
	rootCmd.AddCommand(shareCmd)
}
