// Package main provides the entry point for the multichat server and CLI.
package main

import (
	"fmt"
	"os"

	"multichat/backend/internal/cli"
)

// @title           Multichat API
// @version         1.0
// @description     Ask several LLM backends the same question and keep their answers in one chat.

// @host            localhost:8000
// @BasePath        /api
func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
