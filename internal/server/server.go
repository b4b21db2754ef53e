// Package server hosts the camptools MCP tools over stdio or streamable HTTP.
package server

// file: internal/server/server.go

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/config"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/tools"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// Transports accepted in config.Server.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// MCPPath is where the streamable HTTP endpoint is mounted.
const MCPPath = "/mcp"

const instructions = `camptools reads Basecamp 3/4 accounts.

Start with resolve_capability to find a project's todo set, card table or
schedule. aggregate_work, get_user_assignments, get_overdue_items,
get_due_items, get_stale_items and search_work_items report open work across
projects; get_project_risk and get_workload summarize it. People are matched
by id, email or exact name (find_person). Projects that cannot be read are
listed under problems instead of failing the whole call.

Credentials come from the access_token and account_id arguments, the
Authorization and X-Basecamp-Account-Id headers, the environment, the config
file or the OS keyring, in that order.`

// Server wraps an MCP server exposing the tools of one tools.Service.
type Server struct {
	config *config.Config
	svc    *tools.Service
	mcp    *mcpsrv.MCPServer
	logger logging.Logger
}

// New registers every tool of svc on a fresh MCP server.
func New(cfg *config.Config, svc *tools.Service, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger("server")
	}
	s := mcpsrv.NewMCPServer(
		cfg.Server.Name,
		tools.Version,
		mcpsrv.WithInstructions(instructions),
		mcpsrv.WithToolCapabilities(true),
		mcpsrv.WithRecovery(),
	)
	for _, t := range svc.Tools() {
		s.AddTool(t.Tool, t.Handler)
	}
	return &Server{
		config: cfg,
		svc:    svc,
		mcp:    s,
		logger: logger.WithField("component", "mcp_server"),
	}
}

// Serve runs the configured transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	switch s.config.Server.Transport {
	case TransportHTTP:
		return s.ServeHTTP(ctx, s.config.Server.Addr)
	case TransportStdio, "":
		return s.ServeStdio(ctx, os.Stdin, os.Stdout)
	default:
		return errors.WithHint(errors.Newf("unsupported transport %q", s.config.Server.Transport),
			"Use stdio or http.")
	}
}

// ServeStdio speaks MCP over in and out until the client goes away.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpsrv.NewStdioServer(s.mcp)
	s.logger.Info("MCP server listening on stdio.", "tools", len(s.svc.Names()))
	if err := stdio.Listen(ctx, in, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Wrap(err, "stdio transport")
	}
	return nil
}

// Handler returns the HTTP handler: the MCP endpoint at MCPPath and a
// health check at /healthz, wrapped in logging and recovery.
func (s *Server) Handler() http.Handler {
	stream := mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithHTTPContextFunc(auth.FromRequest),
	)
	mux := http.NewServeMux()
	mux.Handle(MCPPath, stream)
	mux.HandleFunc("/healthz", s.handleHealth)
	return recoverPanics(s.logger, logRequests(s.logger, mux))
}

// ServeHTTP listens on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.logger.Info("MCP server listening on http.", "addr", addr, "path", MCPPath)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "http transport")
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("MCP server shutting down.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http shutdown")
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}
