package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/onetapdev/plughub/internal/installer"
	"github.com/onetapdev/plughub/internal/registry"
	slogctx "github.com/veqryn/slog-context"
)

// Installer is the subset of the install orchestrator the transport
// needs. Narrowed to an interface so handlers can be tested with a stub.
type Installer interface {
	InstallFromGit(ctx context.Context, req installer.Request) (registry.InstalledPlugin, error)
}

// Server wires the HTTP surface to the registry and installer.
type Server struct {
	registry  *registry.Registry
	installer Installer
}

// New returns a server over reg and inst.
func New(reg *registry.Registry, inst Installer) *Server {
	return &Server{registry: reg, installer: inst}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /plugins/installed", s.handleListInstalled)
	mux.HandleFunc("POST /plugins/install-from-git", s.handleInstallFromGit)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to five seconds before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slogctx.FromCtx(ctx).Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}
