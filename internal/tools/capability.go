package tools

// file: internal/tools/capability.go

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/dock"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// capabilityResult is the answer of resolve_capability.
type capabilityResult struct {
	ProjectID    int64           `json:"project_id"`
	ProjectName  string          `json:"project_name"`
	Capability   dock.Capability `json:"capability"`
	CapabilityID int64           `json:"capability_id"`
	Title        string          `json:"title,omitempty"`
	URL          string          `json:"url,omitempty"`
}

func (s *Service) toolResolveCapability() mcpsrv.ServerTool {
	tool := mcplib.NewTool("resolve_capability", toolOptions(
		"Find the id of a project's todo set, message board, docs & files vault, chat, schedule, "+
			"card table, check-ins or email forwards by reading the project's dock. "+
			"Fails when the capability is disabled for the project.",
		[]mcplib.ToolOption{
			mcplib.WithNumber("project_id",
				mcplib.Required(),
				mcplib.Description("Basecamp project id."),
				integer(),
				mcplib.Min(1),
			),
			mcplib.WithString("capability",
				mcplib.Required(),
				mcplib.Description("Capability name, e.g. todoset, message_board, vault, chat, schedule, kanban_board. "+
					"Common aliases such as \"todos\", \"campfire\" or \"card table\" are accepted."),
				mcplib.MinLength(1),
			),
		},
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleResolveCapability}
}

func (s *Service) handleResolveCapability(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		ProjectID  int64  `json:"project_id"`
		Capability string `json:"capability"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	capability, err := dock.ParseCapability(params.Capability)
	if err != nil {
		return errorResult(err), nil
	}

	ss, err := s.open(ctx, params.credentialArgs)
	if err != nil {
		return errorResult(err), nil
	}
	dir, err := ss.docks.Directory(ctx, params.ProjectID)
	if err != nil {
		return errorResult(err), nil
	}
	entry, ok := dir.Lookup(capability)
	if !ok {
		_, err := dir.ID(capability)
		return errorResult(errors.WithHintf(err, "Enabled in this project: %s.", enabled(dir))), nil
	}
	return jsonResult(capabilityResult{
		ProjectID:    dir.ProjectID,
		ProjectName:  dir.ProjectName,
		Capability:   capability,
		CapabilityID: entry.ID,
		Title:        entry.Title,
		URL:          entry.URL,
	})
}

func enabled(dir dock.Directory) string {
	if len(dir.Entries) == 0 {
		return "nothing"
	}
	names := make([]string, len(dir.Entries))
	for i, e := range dir.Entries {
		names[i] = string(e.Capability)
	}
	return strings.Join(names, ", ")
}
