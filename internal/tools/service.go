// Package tools exposes capability resolution, cross-project aggregation,
// triage and workload analysis over Basecamp as MCP tools.
package tools

// file: internal/tools/service.go

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/config"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/metrics"
	"github.com/dkoosis/camptools/internal/schema"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"
)

// Env carries the process-wide dependencies of the tool handlers.
type Env struct {
	Config   *config.Config
	Resolver *auth.Resolver
	Store    auth.TokenStore
	Metrics  *metrics.Collector
	Logger   logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// ClientOptions are applied after the configured ones.
	ClientOptions []basecamp.Option
}

// Service owns the tool definitions and the little state shared between
// calls: the request limiter, the connection pool and the metrics.
type Service struct {
	env       Env
	validator *schema.Validator
	tools     []mcpsrv.ServerTool
	handlers  map[string]mcpsrv.ToolHandlerFunc
	limiter   *rate.Limiter
	transport *http.Transport
	started   time.Time
	logger    logging.Logger
}

// NewService fills in missing dependencies from env.Config and registers
// every tool. Each tool's input schema is compiled for argument validation.
func NewService(env Env) (*Service, error) {
	if env.Config == nil {
		env.Config = config.DefaultConfig()
	}
	if env.Logger == nil {
		env.Logger = logging.GetLogger("tools")
	}
	if env.Metrics == nil {
		env.Metrics = metrics.NewCollector(10)
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Resolver == nil {
		env.Resolver = auth.NewResolver(FallbackCredentials(env.Config), env.Store, env.Logger)
	}
	api := env.Config.API
	s := &Service{
		env:       env,
		validator: schema.NewValidator(env.Logger),
		handlers:  make(map[string]mcpsrv.ToolHandlerFunc),
		limiter:   rate.NewLimiter(rate.Limit(api.RatePerSecond), api.Burst),
		transport: basecamp.NewTransport(api.MaxConnsPerHost),
		started:   env.Now(),
		logger:    env.Logger.WithField("component", "tools"),
	}
	for _, t := range s.definitions() {
		if err := s.register(t); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("Tools registered.", "count", len(s.tools))
	return s, nil
}

// FallbackCredentials returns the credentials set in cfg, used when no
// argument, header or environment variable supplies them.
func FallbackCredentials(cfg *config.Config) auth.Credentials {
	return auth.Credentials{
		AccountID:    cfg.Basecamp.AccountID,
		AccessToken:  cfg.Basecamp.AccessToken,
		RefreshToken: cfg.Basecamp.RefreshToken,
	}
}

func (s *Service) definitions() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolResolveCapability(),
		s.toolAggregateWork(),
		s.toolUserAssignments(),
		s.toolOverdueItems(),
		s.toolDueItems(),
		s.toolStaleItems(),
		s.toolProjectRisk(),
		s.toolSearchWorkItems(),
		s.toolWorkload(),
		s.toolFindPerson(),
		s.toolServerStatus(),
	}
}

func (s *Service) register(t mcpsrv.ServerTool) error {
	doc, err := json.Marshal(t.Tool.InputSchema)
	if err != nil {
		return errors.Wrapf(err, "encoding input schema of %s", t.Tool.Name)
	}
	if err := s.validator.Register(t.Tool.Name, doc); err != nil {
		return errors.Wrapf(err, "registering tool %s", t.Tool.Name)
	}
	h := s.instrument(t.Tool.Name, t.Handler)
	s.tools = append(s.tools, mcpsrv.ServerTool{Tool: t.Tool, Handler: h})
	s.handlers[t.Tool.Name] = h
	return nil
}

// Tools returns the registered tools with validating, metered handlers.
func (s *Service) Tools() []mcpsrv.ServerTool {
	return append([]mcpsrv.ServerTool(nil), s.tools...)
}

// Names returns the registered tool names, sorted.
func (s *Service) Names() []string {
	return s.validator.Names()
}

// CallTool runs one tool outside an MCP session, as the report command does.
func (s *Service) CallTool(ctx context.Context, name string, args map[string]any) (*mcplib.CallToolResult, error) {
	h, ok := s.handlers[name]
	if !ok {
		return nil, errors.WithHintf(errors.Newf("unknown tool %q", name),
			"Known tools: %s.", strings.Join(s.Names(), ", "))
	}
	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h(ctx, req)
}

// instrument validates arguments against the tool's schema, turns handler
// errors into error results and records a metric per call.
func (s *Service) instrument(name string, next mcpsrv.ToolHandlerFunc) mcpsrv.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		start := time.Now()
		logger := s.logger.WithField("tool", name)

		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		var res *mcplib.CallToolResult
		if err := s.validator.ValidateValue(ctx, name, args); err != nil {
			res = errorResult(errors.WithHint(err, "Check the tool's input schema for argument names and types."))
		} else {
			var err error
			res, err = next(ctx, req)
			if err != nil {
				logger.Error("Internal error executing tool handler.", "error", err)
				s.env.Metrics.RecordError("tools", err)
				res = errorResult(errors.Wrapf(err, "%s failed", name))
			}
		}
		if res == nil {
			res = errorResult(errors.Newf("%s returned no result", name))
		}

		elapsed := time.Since(start)
		s.env.Metrics.RecordToolCall(name, elapsed, res.IsError)
		logger.Debug("Tool call finished.", "duration", elapsed, "is_error", res.IsError)
		return res, nil
	}
}
