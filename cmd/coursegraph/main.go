// Package main provides the entry point for the coursegraph CLI.
package main

import (
	"fmt"
	"os"

	"github.com/coursegraph/coursegraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
