// Package main is the NoteKeeper command-line client.
package main

import (
	"os"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
