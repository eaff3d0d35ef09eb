package endpoints

import (
	"github.com/supersonicwisd1/mandolin/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Processing
		&ProcessEndpoint{},

		// Processed file access
		&ListFilesEndpoint{},
		&DownloadFileEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}

// FileCommands returns endpoints for processed-file operations.
// This groups file-related commands under the "files" subcommand.
func FileCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListFilesEndpoint{},
		&DownloadFileEndpoint{},
	}
}
