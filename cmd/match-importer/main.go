// Package main starts the match statistics importer.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/lolworlds/internal/platform/cmd"
	"github.com/louisbranch/lolworlds/internal/platform/config"
	matchimporter "github.com/louisbranch/lolworlds/internal/tools/importer/matches/v1"
)

func main() {
	log.SetPrefix("[IMPORT] ")
	cfg, err := matchimporter.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceImporter, func(ctx context.Context) error {
		return matchimporter.Run(ctx, cfg, os.Stdout)
	}); err != nil {
		config.Exitf("Error: %v", err)
	}
}
