package tools

// file: internal/tools/analysis.go

import (
	"context"
	"slices"

	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/dkoosis/camptools/internal/report"
	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workload"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// workloadWork includes completed todos so completion rates mean something.
var workloadWork = fetch.Include{Todos: true, Cards: true, CompletedTodos: true}

func (s *Service) toolProjectRisk() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_project_risk", toolOptions(
		"Rate each project by its open work: high when anything is critical or more than five items are "+
			"overdue, medium when anything is high severity, low when work is open, none otherwise.",
		[]mcplib.ToolOption{staleDaysOption(), formatOption()},
		scopeOptions(assignedWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleProjectRisk}
}

func (s *Service) handleProjectRisk(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		StaleDays int    `json:"stale_days"`
		Format    string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	f, err := report.ParseFormat(params.Format)
	if err != nil {
		return errorResult(err), nil
	}
	ss, err := s.open(ctx, params.credentialArgs)
	if err != nil {
		return errorResult(err), nil
	}
	res, items, err := ss.collect(ctx, params.scopeArgs, assignedWork, triage.Criteria{})
	if err != nil {
		return errorResult(err), nil
	}

	r := report.FromResult("Project risk", res, items, ss.clock)
	r.Risks = withQuietProjects(triage.AssessProjects(items, ss.clock, s.staleDays(params.StaleDays)), res)
	r.Items = []triage.Classified{}
	r.Timeline = nil
	return renderResult(r, f)
}

// withQuietProjects appends a "none" rating for every project that was
// read successfully but has no open work.
func withQuietProjects(risks []triage.ProjectRisk, res aggregate.Result) []triage.ProjectRisk {
	for _, p := range res.Projects {
		if p.Status == aggregate.StateFailed {
			continue
		}
		if slices.ContainsFunc(risks, func(r triage.ProjectRisk) bool { return r.ProjectID == p.ProjectID }) {
			continue
		}
		risks = append(risks, triage.ProjectRisk{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			BySeverity:  map[triage.Severity]int{},
			Level:       triage.RiskNone,
		})
	}
	return risks
}

func (s *Service) toolWorkload() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_workload", toolOptions(
		"Count open todos, overdue todos and cards per person and rate each person's load "+
			"(overloaded, heavy, moderate, light, no_assignments), with a team summary.",
		[]mcplib.ToolOption{
			userOption(false),
			mcplib.WithString("sort",
				mcplib.Description("Order people by total workload (default), overdue count or name."),
				mcplib.Enum(string(workload.SortByWorkload), string(workload.SortByOverdue), string(workload.SortByName)),
			),
			formatOption(),
		},
		scopeOptions(workloadWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleWorkload}
}

func (s *Service) handleWorkload(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		User   string `json:"user"`
		Sort   string `json:"sort"`
		Format string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	f, err := report.ParseFormat(params.Format)
	if err != nil {
		return errorResult(err), nil
	}
	key, err := workload.ParseSortKey(params.Sort)
	if err != nil {
		return errorResult(err), nil
	}
	ss, err := s.open(ctx, params.credentialArgs)
	if err != nil {
		return errorResult(err), nil
	}

	people, err := ss.people(ctx, params.ProjectIDs)
	if err != nil {
		return errorResult(err), nil
	}
	var only *triage.Resolution
	if params.User != "" {
		r := triage.ResolveAssignee(params.User, people)
		if !r.Found {
			return ss.notFound(r), nil
		}
		only = &r
	}

	res, items, err := ss.collect(ctx, params.scopeArgs, workloadWork, triage.Criteria{})
	if err != nil {
		return errorResult(err), nil
	}
	ws := workload.Analyze(items, people, ss.clock, key)

	r := report.FromResult("Workload", res, items, ss.clock)
	r.Items = []triage.Classified{}
	r.Timeline = nil
	if only != nil {
		r.Title += " for " + only.Person.Name
		ws = slices.DeleteFunc(ws, func(w workload.PersonWorkload) bool { return w.Person.ID != only.Person.ID })
	} else {
		team := workload.Summarize(ws, workload.CountUnassigned(items))
		r.Team = &team
	}
	r.Workloads = ws
	return renderResult(r, f)
}

func (s *Service) toolFindPerson() mcpsrv.ServerTool {
	tool := mcplib.NewTool("find_person", toolOptions(
		"Look a person up by id, email or exact name. Never guesses: partial matches come back as suggestions.",
		[]mcplib.ToolOption{
			mcplib.WithString("query",
				mcplib.Required(),
				mcplib.Description("Numeric id, email address or name."),
				mcplib.MinLength(1),
			),
			mcplib.WithArray("project_ids",
				mcplib.Description("Only consider people on these projects."),
				mcplib.Items(map[string]any{"type": "integer"}),
			),
		},
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleFindPerson}
}

func (s *Service) handleFindPerson(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		Query      string  `json:"query"`
		ProjectIDs []int64 `json:"project_ids"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	ss, err := s.open(ctx, params.credentialArgs)
	if err != nil {
		return errorResult(err), nil
	}
	r, miss, err := ss.resolveUser(ctx, params.Query, params.ProjectIDs)
	if err != nil {
		return errorResult(err), nil
	}
	if miss != nil {
		return miss, nil
	}
	return jsonResult(struct {
		Message string `json:"message"`
		triage.Resolution
		Warnings []fetch.Warning `json:"warnings,omitempty"`
	}{r.Message(), r, ss.lookupWarnings})
}
