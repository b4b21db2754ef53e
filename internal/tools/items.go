package tools

// file: internal/tools/items.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/dkoosis/camptools/internal/report"
	"github.com/dkoosis/camptools/internal/search"
	"github.com/dkoosis/camptools/internal/triage"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

var (
	// openWork is everything a project offers except completed todos.
	openWork = fetch.Include{Todos: true, Cards: true, Schedule: true}

	// assignedWork skips schedule entries, which have participants rather
	// than assignees.
	assignedWork = fetch.Include{Todos: true, Cards: true}
)

// itemQuery is the shared shape of the tools that return a filtered item
// report.
type itemQuery struct {
	title    string
	creds    credentialArgs
	scope    scopeArgs
	defaults fetch.Include
	criteria triage.Criteria
	user     string
	format   string
}

func (s *Service) runItemQuery(ctx context.Context, q itemQuery) (*mcplib.CallToolResult, error) {
	f, err := report.ParseFormat(q.format)
	if err != nil {
		return errorResult(err), nil
	}
	ss, err := s.open(ctx, q.creds)
	if err != nil {
		return errorResult(err), nil
	}

	title := q.title
	if strings.TrimSpace(q.user) != "" {
		r, miss, err := ss.resolveUser(ctx, q.user, q.scope.ProjectIDs)
		if err != nil {
			return errorResult(err), nil
		}
		if miss != nil {
			return miss, nil
		}
		q.criteria.AssigneeID = r.Person.ID
		title += " for " + r.Person.Name
	}

	res, items, err := ss.collect(ctx, q.scope, q.defaults, q.criteria)
	if err != nil {
		return errorResult(err), nil
	}
	return renderResult(report.FromResult(title, res, items, ss.clock), f)
}

func (s *Service) toolAggregateWork() mcpsrv.ServerTool {
	tool := mcplib.NewTool("aggregate_work", toolOptions(
		"Collect todos, cards and schedule entries across projects into one report grouped by due date. "+
			"A project that cannot be read is listed under problems; the others are still reported.",
		[]mcplib.ToolOption{kindsOption(), formatOption()},
		scopeOptions(openWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleAggregateWork}
}

func (s *Service) handleAggregateWork(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		Kinds  []string `json:"kinds"`
		Format string   `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	return s.runItemQuery(ctx, itemQuery{
		title:    "Work across projects",
		creds:    params.credentialArgs,
		scope:    params.scopeArgs,
		defaults: openWork,
		criteria: triage.Criteria{Kinds: kinds(params.Kinds)},
		format:   params.Format,
	})
}

func (s *Service) toolUserAssignments() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_user_assignments", toolOptions(
		"List everything assigned to one person across projects. The person is matched by id, email or "+
			"exact name; when nobody matches, close candidates are suggested instead.",
		[]mcplib.ToolOption{userOption(true), kindsOption(), formatOption()},
		scopeOptions(assignedWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleUserAssignments}
}

func (s *Service) handleUserAssignments(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		User   string   `json:"user"`
		Kinds  []string `json:"kinds"`
		Format string   `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	return s.runItemQuery(ctx, itemQuery{
		title:    "Assignments",
		creds:    params.credentialArgs,
		scope:    params.scopeArgs,
		defaults: assignedWork,
		criteria: triage.Criteria{Kinds: kinds(params.Kinds)},
		user:     params.User,
		format:   params.Format,
	})
}

func (s *Service) toolOverdueItems() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_overdue_items", toolOptions(
		"List open items whose due date has passed, most severe first.",
		[]mcplib.ToolOption{
			userOption(false),
			mcplib.WithString("min_severity",
				mcplib.Description("Drop items below this severity."),
				mcplib.Enum(severityNames()...),
			),
			formatOption(),
		},
		scopeOptions(assignedWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleOverdueItems}
}

func (s *Service) handleOverdueItems(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		User        string `json:"user"`
		MinSeverity string `json:"min_severity"`
		Format      string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	c := triage.Criteria{Bucket: triage.BucketOverdue}
	if params.MinSeverity != "" {
		sev, err := triage.ParseSeverity(params.MinSeverity)
		if err != nil {
			return errorResult(err), nil
		}
		c.MinSeverity = sev
	}
	return s.runItemQuery(ctx, itemQuery{
		title:    "Overdue items",
		creds:    params.credentialArgs,
		scope:    params.scopeArgs,
		defaults: assignedWork,
		criteria: c,
		user:     params.User,
		format:   params.Format,
	})
}

func (s *Service) toolDueItems() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_due_items", toolOptions(
		"List open items due in a window: overdue, today, this_week or next_week. Weeks start on Sunday. "+
			"Items without a due date never match.",
		[]mcplib.ToolOption{
			mcplib.WithString("due",
				mcplib.Required(),
				mcplib.Description("Due-date window."),
				mcplib.Enum(string(triage.BucketOverdue), string(triage.BucketToday),
					string(triage.BucketThisWeek), string(triage.BucketNextWeek)),
			),
			userOption(false),
			formatOption(),
		},
		scopeOptions(openWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleDueItems}
}

func (s *Service) handleDueItems(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		Due    string `json:"due"`
		User   string `json:"user"`
		Format string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	bucket, err := triage.ParseBucket(params.Due)
	if err != nil {
		return errorResult(err), nil
	}
	return s.runItemQuery(ctx, itemQuery{
		title:    "Due " + strings.ReplaceAll(string(bucket), "_", " "),
		creds:    params.credentialArgs,
		scope:    params.scopeArgs,
		defaults: openWork,
		criteria: triage.Criteria{Bucket: bucket},
		user:     params.User,
		format:   params.Format,
	})
}

func (s *Service) toolStaleItems() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_stale_items", toolOptions(
		"List open todos and cards with no activity for a number of days.",
		[]mcplib.ToolOption{staleDaysOption(), userOption(false), formatOption()},
		scopeOptions(assignedWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleStaleItems}
}

func (s *Service) handleStaleItems(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		StaleDays int    `json:"stale_days"`
		User      string `json:"user"`
		Format    string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	days := s.staleDays(params.StaleDays)
	return s.runItemQuery(ctx, itemQuery{
		title:    fmt.Sprintf("Stale for %d+ days", days),
		creds:    params.credentialArgs,
		scope:    params.scopeArgs,
		defaults: assignedWork,
		criteria: triage.Criteria{StaleOnly: true, StaleDays: days},
		user:     params.User,
		format:   params.Format,
	})
}

func (s *Service) toolSearchWorkItems() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_work_items", toolOptions(
		"Search item titles and descriptions across projects. Results are ranked: the whole phrase scores "+
			"highest, a title starting with it more, and each matching word a little.",
		[]mcplib.ToolOption{
			mcplib.WithString("query",
				mcplib.Required(),
				mcplib.Description("Words or phrase to look for. Case-insensitive."),
				mcplib.MinLength(1),
			),
			mcplib.WithNumber("limit",
				mcplib.Description("Maximum results (default 20)."),
				integer(),
				mcplib.Min(1),
				mcplib.Max(200),
			),
			mcplib.WithString("format",
				mcplib.Description("Output format. Defaults to markdown."),
				mcplib.Enum(string(report.FormatMarkdown), "md", string(report.FormatJSON), string(report.FormatText)),
			),
		},
		scopeOptions(openWork),
		credentialOptions(),
	)...)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchWorkItems}
}

const defaultSearchLimit = 20

// searchResult is the JSON answer of search_work_items.
type searchResult struct {
	Query    string           `json:"query"`
	RunID    string           `json:"run_id"`
	Hits     []search.Hit     `json:"hits"`
	Filters  map[string]any   `json:"filters_applied"`
	Problems []report.Problem `json:"problems"`
}

func (s *Service) handleSearchWorkItems(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var params struct {
		credentialArgs
		scopeArgs
		Query  string `json:"query"`
		Limit  int    `json:"limit"`
		Format string `json:"format"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return errorResult(err), nil
	}
	f, err := report.ParseFormat(params.Format)
	if err != nil {
		return errorResult(err), nil
	}
	if params.Limit <= 0 {
		params.Limit = defaultSearchLimit
	}

	ss, err := s.open(ctx, params.credentialArgs)
	if err != nil {
		return errorResult(err), nil
	}
	res, items, err := ss.collect(ctx, params.scopeArgs, openWork, triage.Criteria{})
	if err != nil {
		return errorResult(err), nil
	}
	res.FiltersApplied["query"] = params.Query
	hits := search.Search(items, params.Query, params.Limit)

	switch f {
	case report.FormatJSON:
		return jsonResult(searchResult{
			Query:    params.Query,
			RunID:    res.RunID,
			Hits:     hits,
			Filters:  res.FiltersApplied,
			Problems: report.Problems(res),
		})
	case report.FormatText:
		return mcplib.NewToolResultText(searchText(params.Query, hits, res)), nil
	default:
		return mcplib.NewToolResultText(searchMarkdown(params.Query, hits, res)), nil
	}
}

func searchMarkdown(query string, hits []search.Hit, res aggregate.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search: %s\n\n", query)
	if len(hits) == 0 {
		fmt.Fprintf(&b, "No items match across %d projects.\n", len(res.Projects))
	} else {
		b.WriteString("| Score | Title | Kind | Project | Container | Due |\n")
		b.WriteString("|---:|---|---|---|---|---|\n")
		for _, h := range hits {
			due := ""
			if h.DueOn != nil {
				due = h.DueOn.String()
			}
			title := strings.ReplaceAll(h.Title, "|", "\\|")
			if h.URL != "" {
				title = "[" + title + "](" + h.URL + ")"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				h.Score, title, h.Kind, h.ProjectName, h.ContainerName, due)
		}
	}
	if problems := report.Problems(res); len(problems) > 0 {
		b.WriteString("\n## Problems\n\n")
		for _, p := range problems {
			fmt.Fprintf(&b, "- %s (project %d): %s\n", p.Severity, p.ProjectID, p.Message)
		}
	}
	return b.String()
}

func searchText(query string, hits []search.Hit, res aggregate.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d matches for %q across %d projects.\n", len(hits), query, len(res.Projects))
	for _, h := range hits {
		fmt.Fprintf(&b, "%4d  %s (%s, %s)\n", h.Score, h.Title, h.Kind, h.ProjectName)
	}
	if n := len(res.Errors) + len(res.Warnings); n > 0 {
		fmt.Fprintf(&b, "%d problems; use format json for details.\n", n)
	}
	return b.String()
}

func severityNames() []string {
	out := make([]string, len(triage.Severities))
	for i, s := range triage.Severities {
		out[i] = string(s)
	}
	return out
}
