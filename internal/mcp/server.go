// Package mcp exposes extraction, pattern and diagram generation as MCP tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/archdiag/internal/discovery"
	"go.uber.org/zap"
)

// ServerName is the name announced to MCP clients.
const ServerName = "archdiag"

// Options configure the MCP server.
type Options struct {
	Version     string
	Root        string   // base directory for document patterns
	Ignore      []string // ignore patterns for discovery
	Concurrency int      // parallel document reads
	Logger      *zap.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a server with every archdiag tool registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	resolver, err := discovery.NewResolver(opts.Root, opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	s := server.NewMCPServer(
		ServerName,
		opts.Version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(s, resolver, opts.Concurrency, opts.Logger)
	AddPatternTools(s)
	AddDiagramTools(s)

	return &Server{mcp: s, logger: opts.Logger}, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve answers requests on stdin/stdout until ctx is cancelled, input ends
// or the process receives SIGINT or SIGTERM.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		errCh <- server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		cancel()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		<-errCh
		return nil
	}
}
