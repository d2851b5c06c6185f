// Package mcp parses MCP command flags and serves the statistics tools on stdio.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	entrypoint "github.com/louisbranch/lolworlds/internal/platform/cmd"
	"github.com/louisbranch/lolworlds/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"LOLWORLDS_DB_PATH" envDefault:"data/lolworlds.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "statistics database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, fmt.Errorf("db path is required")
	}
	return cfg, nil
}

// Run serves the MCP tools until ctx ends or the client disconnects.
func Run(ctx context.Context, cfg Config) error {
	server, err := service.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init MCP server: %w", err)
	}
	return server.Serve(ctx)
}
