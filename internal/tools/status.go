package tools

// file: internal/tools/status.go

import (
	"context"
	"time"

	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/metrics"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// Version is reported to clients and by server_status.
var Version = "0.4.0"

// credentialStatus reports where credentials would come from, never the
// credentials themselves.
type credentialStatus struct {
	Available     bool   `json:"available"`
	AccountID     string `json:"account_id,omitempty"`
	TokenSource   string `json:"token_source,omitempty"`
	AccountSource string `json:"account_source,omitempty"`
	Problem       string `json:"problem,omitempty"`
}

type statusResult struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Uptime      string           `json:"uptime"`
	BaseURL     string           `json:"base_url"`
	Timezone    string           `json:"timezone"`
	StaleDays   int              `json:"stale_days"`
	Concurrency map[string]int   `json:"concurrency"`
	RateLimit   float64          `json:"rate_limit_per_second"`
	Tools       []string         `json:"tools"`
	Credentials credentialStatus `json:"credentials"`
	Metrics     metrics.Snapshot `json:"metrics"`
}

func (s *Service) toolServerStatus() mcpsrv.ServerTool {
	tool := mcplib.NewTool("server_status",
		mcplib.WithDescription("Report server configuration, credential availability and call metrics. Makes no Basecamp requests."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleServerStatus}
}

func (s *Service) handleServerStatus(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	cfg := s.env.Config
	out := statusResult{
		Name:      cfg.Server.Name,
		Version:   Version,
		Uptime:    s.env.Now().Sub(s.started).Round(time.Second).String(),
		BaseURL:   cfg.Basecamp.BaseURL,
		Timezone:  cfg.Location().String(),
		StaleDays: cfg.Analysis.StaleDays,
		RateLimit: cfg.API.RatePerSecond,
		Tools:     s.Names(),
		Metrics:   s.env.Metrics.Snapshot(),
	}
	out.Concurrency = map[string]int{
		"projects":    cfg.Concurrency.Projects,
		"per_project": cfg.Concurrency.PerProject,
	}

	creds, err := s.env.Resolver.Resolve(ctx, auth.Credentials{})
	if err != nil {
		out.Credentials = credentialStatus{Problem: err.Error()}
	} else {
		out.Credentials = credentialStatus{
			Available:     true,
			AccountID:     creds.AccountID,
			TokenSource:   creds.TokenSource,
			AccountSource: creds.AccountSource,
		}
	}
	return jsonResult(out)
}
