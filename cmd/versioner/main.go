package main

import (
	"os"

	"github.com/Iron-Ham/versioner/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
