// Package main is the container entrypoint: it loads the configured match
// sources once, then runs the console until a signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/louisbranch/lolworlds/internal/platform/config"
)

// shutdownTimeout is the grace period before the console is killed.
const shutdownTimeout = 10 * time.Second

type entrypointConfig struct {
	ImporterPath    string `env:"LOLWORLDS_IMPORTER_BIN" envDefault:"/app/match-importer"`
	ConsolePath     string `env:"LOLWORLDS_CONSOLE_BIN" envDefault:"/app/console"`
	ParticipantsCSV string `env:"LOLWORLDS_PARTICIPANTS_CSV"`
	GamesCSV        string `env:"LOLWORLDS_GAMES_CSV"`
	GamesXLSX       string `env:"LOLWORLDS_GAMES_XLSX"`
	SkipImport      bool   `env:"LOLWORLDS_SKIP_IMPORT"`
}

func (c entrypointConfig) hasSources() bool {
	return c.ParticipantsCSV != "" || c.GamesCSV != "" || c.GamesXLSX != ""
}

func main() {
	log.SetPrefix("[ENTRYPOINT] ")
	var cfg entrypointConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SkipImport || !cfg.hasSources() {
		log.Printf("no match sources configured, skipping import")
	} else if err := runImport(ctx, cfg.ImporterPath); err != nil {
		config.Exitf("Error: %v", err)
	}

	os.Exit(superviseConsole(ctx, cfg.ConsolePath))
}

// runImport runs the importer to completion. The importer reads its sources
// from the inherited environment.
func runImport(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("import matches: %w", err)
	}
	return nil
}

// superviseConsole starts the console and returns its exit code. A signal
// is forwarded as SIGTERM, then SIGKILL after shutdownTimeout.
func superviseConsole(ctx context.Context, path string) int {
	cmd := exec.Command(path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		log.Printf("start console: %v", err)
		return 1
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	select {
	case err := <-exited:
		log.Printf("console exited: %v", err)
		return exitCode(err)
	case <-ctx.Done():
		log.Printf("shutdown signal received")
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-exited:
		return exitCode(err)
	case <-timer.C:
		_ = cmd.Process.Kill()
		return exitCode(<-exited)
	}
}

// exitCode derives a process exit code from a wait error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode()
	}
	return 1
}
