package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/supersonicwisd1/mandolin/internal/config"
	"github.com/supersonicwisd1/mandolin/internal/home"
	"github.com/supersonicwisd1/mandolin/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Mandolin server",
	Long: `Start the Mandolin HTTP server.

The server exposes the PA form processing pipeline over HTTP:
  - POST /api/v1/process       - Fill a PA form from a referral document
  - GET  /api/v1/files         - List processed PDFs
  - GET  /api/v1/files/{name}  - Download a processed PDF
  - GET  /health, /ready       - Liveness and readiness checks

Configuration is hot-reloaded: edits to the config file update the
provider registry without a restart.

Examples:
  mandolin serve                    # Start on default port 8080
  mandolin serve --port 3000        # Start on custom port
  mandolin serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Load config, preferring an explicit --config over the home file
		configPath := cfgFile
		if configPath == "" && h.ConfigExists() {
			configPath = h.ConfigPath()
		}
		mgr, err := config.NewManager(configPath)
		if err != nil {
			return err
		}
		mgr.WatchConfig()

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: mgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
