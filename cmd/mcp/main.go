// Package main starts the read-only statistics MCP server on stdio.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/lolworlds/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/lolworlds/internal/platform/cmd"
	"github.com/louisbranch/lolworlds/internal/platform/config"
)

func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[MCP] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpcmd.Run(ctx, cfg)
	}); err != nil {
		config.Exitf("failed to serve MCP: %v", err)
	}
}
