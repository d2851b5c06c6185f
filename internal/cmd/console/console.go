// Package console parses console command flags and runs the HTTP console.
package console

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/lolworlds/internal/platform/cmd"
	consoleapp "github.com/louisbranch/lolworlds/internal/services/console"
)

// Config holds console command configuration.
type Config struct {
	HTTPAddr      string        `env:"LOLWORLDS_CONSOLE_ADDR"        envDefault:"localhost:8090"`
	DBPath        string        `env:"LOLWORLDS_DB_PATH"             envDefault:"data/lolworlds.db"`
	MaxConns      int           `env:"LOLWORLDS_CONSOLE_MAX_CONNS"   envDefault:"64"`
	SecureCookies bool          `env:"LOLWORLDS_CONSOLE_SECURE_COOKIES"`
	SessionKey    string        `env:"LOLWORLDS_CONSOLE_SESSION_KEY"`
	SessionTTL    time.Duration `env:"LOLWORLDS_CONSOLE_SESSION_TTL" envDefault:"8h"`
	AdminPass     string        `env:"LOLWORLDS_ADMIN_USER_PASS"`
	ManagerPass   string        `env:"LOLWORLDS_MANAGER_USER_PASS"`
	RegularPass   string        `env:"LOLWORLDS_REGULAR_USER_PASS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "statistics database path")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "maximum concurrent connections")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "mark the session cookie Secure")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.AdminPass == "" && cfg.ManagerPass == "" && cfg.RegularPass == "" {
		return Config{}, fmt.Errorf("at least one of LOLWORLDS_ADMIN_USER_PASS, LOLWORLDS_MANAGER_USER_PASS or LOLWORLDS_REGULAR_USER_PASS is required")
	}
	return cfg, nil
}

func (c Config) serverConfig() consoleapp.Config {
	return consoleapp.Config{
		HTTPAddr:      c.HTTPAddr,
		DBPath:        c.DBPath,
		MaxConns:      c.MaxConns,
		SecureCookies: c.SecureCookies,
		Auth: consoleapp.AuthConfig{
			Passwords: map[consoleapp.Role]string{
				consoleapp.RoleAdmin:   c.AdminPass,
				consoleapp.RoleManager: c.ManagerPass,
				consoleapp.RoleRegular: c.RegularPass,
			},
			SessionKey: []byte(c.SessionKey),
			SessionTTL: c.SessionTTL,
		},
	}
}

// Run starts the console server.
func Run(ctx context.Context, cfg Config) error {
	server, err := consoleapp.NewServer(cfg.serverConfig())
	if err != nil {
		return fmt.Errorf("init console server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve console: %w", err)
	}
	return nil
}
