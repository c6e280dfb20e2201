package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"

	"github.com/atinyakov/NoteKeeper/internal/client"
	"github.com/spf13/cobra"
)

var (
	profilePath string
	serverURL   string
	token       string

	api *client.Client
)

var rootCmd = &cobra.Command{
	Use:           "notekeeper",
	Short:         "NoteKeeper command-line client",
	Version:       fmt.Sprintf("%s (built %s)", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A")),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if profilePath == "" {
			p, err := client.DefaultProfilePath()
			if err != nil {
				return err
			}
			profilePath = p
		}
		profile, err := client.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		url := cmp.Or(serverURL, os.Getenv("NOTEKEEPER_URL"), profile.URL, "http://localhost:8080")
		tok := cmp.Or(token, os.Getenv("NOTEKEEPER_TOKEN"), profile.Token)
		api = client.New(url, tok)
		return nil
	},
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, client.Failure(err.Error()))
	}
	return err
}

func requireToken() error {
	if api.Token == "" {
		return errors.New("not logged in: run 'notekeeper login --token <jwt>' or set NOTEKEEPER_TOKEN")
	}
	return nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save the server URL and access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return errors.New("--token is required")
		}
		p := &client.Profile{URL: api.BaseURL, Token: token}
		if err := p.Save(profilePath); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		fmt.Println(client.Success("Saved profile to " + profilePath))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "path to the saved profile")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "url", "u", "", "server base URL")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "access token (JWT)")
	rootCmd.AddCommand(loginCmd)
}
