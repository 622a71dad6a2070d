package main

import (
	"os"

	"github.com/wonny/jhlj/backend/cmd/jhlj/commands"
)

// main is the entry point for the JHLJ CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/jhlj [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
