// Package main provides the entry point for the pagetalk CLI.
package main

import (
	"os"

	"github.com/pagetalk/pagetalk/cmd/pagetalk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
