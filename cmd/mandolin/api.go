package main

import (
	"github.com/spf13/cobra"

	"github.com/supersonicwisd1/mandolin/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Mandolin server via HTTP.

These commands require a running server (mandolin serve).
Use --server to specify a custom server URL.

Examples:
  mandolin api health              # Check server health
  mandolin api status              # Show providers and output directory`,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Processed file commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// --server is persistent on the root so the top-level process and files
	// commands inherit it too
	rootCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Files as subcommand group
	for _, ep := range endpoints.FileCommands() {
		filesCmd.AddCommand(ep.Command(getServerURL))
	}

	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(filesCmd)

	// One-shot processing at the top level
	rootCmd.AddCommand((&endpoints.ProcessEndpoint{}).Command(getServerURL))
}
