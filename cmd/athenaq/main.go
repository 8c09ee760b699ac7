// Package main is the entry point for the athenaq CLI binary.
package main

import (
	"os"

	cli "athenaq/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
