// Package main is the entry point for the sheetmap CLI binary.
package main

import (
	"os"

	"sheetmap/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
