// Package main provides the lpi command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/lpi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
