// Package main provides the quoteflow CLI.
package main

import (
	"os"

	"github.com/quoteflow/quoteflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
