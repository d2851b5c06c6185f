// Package main starts the statistics console.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	consolecmd "github.com/louisbranch/lolworlds/internal/cmd/console"
	entrypoint "github.com/louisbranch/lolworlds/internal/platform/cmd"
	"github.com/louisbranch/lolworlds/internal/platform/config"
)

func main() {
	log.SetPrefix("[CONSOLE] ")
	cfg, err := consolecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceConsole, func(ctx context.Context) error {
		return consolecmd.Run(ctx, cfg)
	}); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
