package main

import (
	"os"

	"github.com/wonny/allocation/cmd/allocation/commands"
)

// main is the entry point for the allocation CLI
// ⭐ single entry point: go run ./cmd/allocation [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
