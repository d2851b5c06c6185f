package console

import (
	"flag"
	"os"
	"testing"
	"time"

	consoleapp "github.com/louisbranch/lolworlds/internal/services/console"
)

func clearConsoleEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOLWORLDS_CONSOLE_ADDR",
		"LOLWORLDS_DB_PATH",
		"LOLWORLDS_CONSOLE_MAX_CONNS",
		"LOLWORLDS_CONSOLE_SECURE_COOKIES",
		"LOLWORLDS_CONSOLE_SESSION_KEY",
		"LOLWORLDS_CONSOLE_SESSION_TTL",
		"LOLWORLDS_ADMIN_USER_PASS",
		"LOLWORLDS_MANAGER_USER_PASS",
		"LOLWORLDS_REGULAR_USER_PASS",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearConsoleEnv(t)
	t.Setenv("LOLWORLDS_REGULAR_USER_PASS", "regular")
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8090" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "data/lolworlds.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.MaxConns != 64 {
		t.Fatalf("expected default max conns, got %d", cfg.MaxConns)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("expected default session ttl, got %v", cfg.SessionTTL)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	clearConsoleEnv(t)
	t.Setenv("LOLWORLDS_CONSOLE_ADDR", "env-addr")
	t.Setenv("LOLWORLDS_ADMIN_USER_PASS", "admin")
	t.Setenv("LOLWORLDS_CONSOLE_SESSION_KEY", "0123456789abcdef0123456789abcdef")
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	args := []string{"-http-addr", "flag-addr", "-db-path", "flag.db", "-max-conns", "4", "-session-ttl", "30m"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-addr" || cfg.DBPath != "flag.db" || cfg.MaxConns != 4 || cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}

	server := cfg.serverConfig()
	if server.Auth.Passwords[consoleapp.RoleAdmin] != "admin" {
		t.Fatalf("admin password not carried over")
	}
	if string(server.Auth.SessionKey) != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("session key not carried over")
	}
}

func TestParseConfigRequiresAPassword(t *testing.T) {
	clearConsoleEnv(t)
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without role passwords")
	}
}
