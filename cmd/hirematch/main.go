// Package main provides the entry point for the HireMatch HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hirematch",
	Short: "HireMatch HTTP API Server",
	Long:  "HireMatch is a recruiting platform API: role-scoped endpoints for candidates, recruiters, and admins, with model-assisted candidate-to-job matching.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
