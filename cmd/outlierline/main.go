package main

import (
	"os"

	"github.com/wonny/outlierline/cmd/outlierline/commands"
)

// main is the entry point for the outlierline CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/outlierline [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
