package mcp

import (
	"flag"
	"os"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("LOLWORLDS_DB_PATH", "")
	_ = os.Unsetenv("LOLWORLDS_DB_PATH")
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/lolworlds.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("LOLWORLDS_DB_PATH", "env.db")
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}

	fs = flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-db-path", "flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigRejectsBlankPath(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-db-path", " "}); err == nil {
		t.Fatal("expected error")
	}
}
