package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/louisbranch/lolworlds/internal/services/mcp/domain"
	"github.com/louisbranch/lolworlds/internal/services/stats/report"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName = "lolworlds-stats"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server exposes read-only statistics tools over MCP.
type Server struct {
	mcpServer *mcp.Server
	closer    io.Closer
}

// New builds a server over store. The caller keeps ownership of store.
func New(store storage.ReadStore) (*Server, error) {
	if store == nil {
		return nil, errors.New("read store is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, store)
	return &Server{mcpServer: mcpServer}, nil
}

// Open opens the statistics database at path and builds a server that owns it.
func Open(path string) (*Server, error) {
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stats store: %w", err)
	}
	server, err := New(store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	server.closer = store
	return server, nil
}

func registerTools(server *mcp.Server, store storage.ReadStore) {
	runner := report.NewRunner(store)
	mcp.AddTool(server, domain.ListReportsTool(), domain.ListReportsHandler())
	mcp.AddTool(server, domain.RunReportTool(), domain.RunReportHandler(runner))
	mcp.AddTool(server, domain.ChampionAveragesTool(), domain.ChampionAveragesHandler(runner))
	mcp.AddTool(server, domain.PlayerStatsTool(), domain.PlayerStatsHandler(store))
}

// Serve runs the server over stdio until ctx ends or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the server on transport and releases the store on
// every exit path.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close stats store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close stats store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close releases the store opened by Open.
func (s *Server) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
