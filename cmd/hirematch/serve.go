package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hirematch/hirematch-api/internal/config"
	"github.com/hirematch/hirematch-api/internal/logging"
	"github.com/hirematch/hirematch-api/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing the candidate, recruiter, and admin REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if cmd.Flags().Changed("port") {
		settings.Port = servePort
	}
	if settings.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	logger, err := logging.New(settings.LogLevel, settings.IsLocal())
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(context.Background(), settings, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
