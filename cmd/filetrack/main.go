// Package main implements the filetrack client: an interactive terminal UI
// for uploading files and following their processing, plus scriptable
// upload and status subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
