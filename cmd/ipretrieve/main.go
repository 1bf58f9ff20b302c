// Package main provides the entry point for the ipretrieve CLI.
package main

import (
	"os"

	"github.com/ipassist/retrieval-core/cmd/ipretrieve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
