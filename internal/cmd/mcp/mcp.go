// Package mcp parses MCP command flags and launches the stdio server.
package mcp

import (
	"context"
	"flag"

	mcpservice "github.com/scarglamour/ShadowSprite/internal/mcp/service"
	entrypoint "github.com/scarglamour/ShadowSprite/internal/platform/cmd"
)

// Config holds MCP command configuration.
type Config struct {
	Transport string `env:"SHADOWSPRITE_MCP_TRANSPORT" envDefault:"stdio"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "The MCP transport kind (stdio)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
		})
	})
}
