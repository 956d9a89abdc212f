package main

import (
	"os"

	"github.com/utafrali/minicart/cmd/minicart/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
