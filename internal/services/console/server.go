// Package console serves the role-gated statistics console over HTTP.
package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/lolworlds/internal/platform/timeouts"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns caps concurrent console connections.
const DefaultMaxConns = 64

// Config defines the inputs for the console server.
type Config struct {
	HTTPAddr      string
	DBPath        string
	MaxConns      int
	SecureCookies bool
	Auth          AuthConfig
}

// Server hosts the console HTTP server.
type Server struct {
	httpAddr   string
	maxConns   int
	httpServer *http.Server
	store      *sqlite.Store
}

// NewServer opens the statistics store and builds the console server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.MaxConns <= 0 {
		config.MaxConns = DefaultMaxConns
	}
	auth, err := NewAuthenticator(config.Auth)
	if err != nil {
		return nil, fmt.Errorf("session auth: %w", err)
	}
	if len(config.Auth.SessionKey) == 0 {
		log.Printf("no session key configured, sessions end on restart")
	}

	store, err := sqlite.Open(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open stats store: %w", err)
	}
	handler, err := NewHandler(Dependencies{
		Auth:          auth,
		Store:         store,
		Statements:    store,
		SecureCookies: config.SecureCookies,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Server{
		httpAddr: httpAddr,
		maxConns: config.MaxConns,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

// ListenAndServe serves HTTP until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("console server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	listener = netutil.LimitListener(listener, s.maxConns)

	serveErr := make(chan error, 1)
	log.Printf("console listening on %s", listener.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the statistics store.
func (s *Server) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close stats store: %v", err)
	}
}
