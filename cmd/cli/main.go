// Package main is the entry point for fsctl, the terminal client for the
// fieldops controller API.
package main

import (
	"os"

	"fieldops/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
