package ssh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bts "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/pfassina/folio/internal/browse"
)

// Server wraps a Wish SSH server.
type Server struct {
	server *ssh.Server
	addr   string
}

// New creates an SSH server that serves the article browser.
func New(listen, hostKeyPath string, load browse.LoadFunc, source string) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0700); err != nil {
		return nil, fmt.Errorf("create host key directory: %w", err)
	}

	s, err := wish.NewServer(
		wish.WithAddress(listen),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bts.Middleware(NewHandler(load, source)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}

	return &Server{server: s, addr: listen}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe starts the SSH server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Close stops the SSH server.
func (s *Server) Close() error {
	return s.server.Close()
}
