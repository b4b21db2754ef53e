package tools

// file: internal/tools/session.go

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/dock"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/report"
	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// session is what one tool call works with. Nothing in it outlives the call.
type session struct {
	client *basecamp.Client
	agg    *aggregate.Aggregator
	docks  *dock.Client
	clock  triage.Clock
	fanOut int
	logger logging.Logger

	// lookupWarnings holds the people listings that failed during the call.
	lookupWarnings []fetch.Warning
}

func (s *Service) open(ctx context.Context, args credentialArgs) (*session, error) {
	creds, err := s.env.Resolver.Resolve(ctx, args.credentials())
	if err != nil {
		return nil, err
	}
	cfg := s.env.Config
	logger := s.logger.WithField("account_id", creds.AccountID)

	ts := auth.TokenSource(ctx, creds, auth.OAuthClient{
		ClientID:     cfg.Basecamp.ClientID,
		ClientSecret: cfg.Basecamp.ClientSecret,
		TokenURL:     cfg.Basecamp.TokenURL,
	}, s.env.Store, logger)

	opts := []basecamp.Option{
		basecamp.WithLimiter(s.limiter),
		basecamp.WithTransport(s.transport),
		basecamp.WithTimeout(cfg.API.RequestTimeout),
		basecamp.WithMaxWait(cfg.API.MaxWait),
		basecamp.WithUserAgent(cfg.Basecamp.UserAgent),
		basecamp.WithMetrics(s.env.Metrics),
		basecamp.WithLogger(logger),
	}
	client, err := basecamp.NewClient(cfg.Basecamp.BaseURL, creds.AccountID, ts, append(opts, s.env.ClientOptions...)...)
	if err != nil {
		return nil, err
	}
	agg := aggregate.New(client, cfg.Concurrency.Projects, cfg.Concurrency.PerProject,
		aggregate.WithRecorder(s.env.Metrics), aggregate.WithLogger(logger))
	return &session{
		client: client,
		agg:    agg,
		docks:  dock.NewClient(client, logger),
		clock:  s.clock(),
		fanOut: cfg.Concurrency.Projects,
		logger: logger,
	}, nil
}

func (s *Service) clock() triage.Clock {
	return triage.NewClock(s.env.Now(), s.env.Config.Location())
}

func (s *Service) staleDays(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.env.Config.Analysis.StaleDays
}

// collect aggregates the scope and narrows the items with c. Completed
// todos pass c only when they were fetched. It fails only when no project
// contributed.
func (ss *session) collect(ctx context.Context, scope scopeArgs, defaults fetch.Include, c triage.Criteria) (aggregate.Result, []workitem.Item, error) {
	in, err := scope.include(defaults)
	if err != nil {
		return aggregate.Result{}, nil, err
	}
	res := ss.withLookupWarnings(ss.agg.Aggregate(ctx, scope.selection(), in))
	if allFailed(res) {
		first := res.Errors[0]
		err := first.Err
		if err == nil {
			err = errors.New(first.Message)
		}
		return res, nil, errors.Wrapf(err, "no project could be read (%d failed)", len(res.Errors))
	}

	c.IncludeCompleted = in.CompletedTodos
	items := triage.Apply(res.Items, c, ss.clock)
	res.FiltersApplied = c.Describe()
	res.FiltersApplied["sources"] = sources(in)
	if len(in.Required) > 0 {
		res.FiltersApplied["required_capabilities"] = in.Required
	}
	return res, items, nil
}

func allFailed(res aggregate.Result) bool {
	return len(res.Errors) > 0 && len(res.Errors) >= max(len(res.Projects), 1)
}

func sources(in fetch.Include) []string {
	var out []string
	if in.Todos {
		out = append(out, "todos")
	}
	if in.CompletedTodos {
		out = append(out, "completed_todos")
	}
	if in.Cards {
		out = append(out, "cards")
	}
	if in.Schedule {
		out = append(out, "schedule")
	}
	return out
}

// people lists everyone visible to the account, or the union of the people
// on projectIDs in project order. A project whose people cannot be listed
// is kept as a warning for the call's result; the lookup fails only when
// no project's people could be read.
func (ss *session) people(ctx context.Context, projectIDs []int64) ([]workitem.Person, error) {
	if len(projectIDs) == 0 {
		ps, err := ss.client.ListPeople(ctx)
		if err != nil {
			return nil, err
		}
		return workitem.People(ps), nil
	}

	type listing struct {
		people []basecamp.Person
		err    error
	}
	slots := make([]listing, len(projectIDs))
	var g errgroup.Group
	g.SetLimit(max(ss.fanOut, 1))
	for i, id := range projectIDs {
		g.Go(func() error {
			ps, err := ss.client.ListProjectPeople(ctx, id)
			slots[i] = listing{people: ps, err: err}
			return nil
		})
	}
	g.Wait()

	seen := make(map[int64]bool)
	var out []workitem.Person
	var firstErr error
	failed := 0
	for i, l := range slots {
		if l.err != nil {
			failed++
			if firstErr == nil {
				firstErr = l.err
			}
			ss.lookupWarnings = append(ss.lookupWarnings, fetch.Warning{
				ProjectID: projectIDs[i],
				Kind:      "people",
				Resource:  "people",
				Message:   l.err.Error(),
				Err:       l.err,
			})
			ss.logger.Warn("Project people unavailable.", "project_id", projectIDs[i], "error", l.err)
			continue
		}
		for _, p := range workitem.People(l.people) {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	if failed == len(projectIDs) {
		return nil, errors.Wrapf(firstErr, "no project's people could be read (%d failed)", failed)
	}
	return out, nil
}

// withLookupWarnings adds the people lookups that failed to res, except for
// projects res already lists as errors.
func (ss *session) withLookupWarnings(res aggregate.Result) aggregate.Result {
	for _, w := range ss.lookupWarnings {
		if slices.ContainsFunc(res.Errors, func(e aggregate.ProjectError) bool { return e.ProjectID == w.ProjectID }) {
			continue
		}
		res.Warnings = append(res.Warnings, w)
	}
	return res
}

// resolveUser looks query up among the people in scope. A miss is not an
// error; the returned result explains it.
func (ss *session) resolveUser(ctx context.Context, query string, projectIDs []int64) (triage.Resolution, *mcplib.CallToolResult, error) {
	people, err := ss.people(ctx, projectIDs)
	if err != nil {
		return triage.Resolution{}, nil, errors.Wrap(err, "listing people")
	}
	r := triage.ResolveAssignee(query, people)
	if !r.Found {
		ss.logger.Debug("Assignee not found.", "query", query, "suggestions", len(r.Suggestions))
		return r, ss.notFound(r), nil
	}
	return r, nil, nil
}

// notFound explains a miss. When some projects' people could not be read
// the miss may be one of them, and the result says so.
func (ss *session) notFound(r triage.Resolution) *mcplib.CallToolResult {
	msg := r.Message()
	if n := len(ss.lookupWarnings); n > 0 {
		msg += fmt.Sprintf(" The people of %d project(s) could not be read.", n)
	}
	body, _ := json.MarshalIndent(struct {
		triage.Resolution
		Warnings []fetch.Warning `json:"warnings,omitempty"`
	}{r, ss.lookupWarnings}, "", "  ")
	return mcplib.NewToolResultText(msg + "\n\n" + string(body))
}

// errorResult reports err to the caller with any hints attached to it.
func errorResult(err error) *mcplib.CallToolResult {
	var b strings.Builder
	b.WriteString(err.Error())
	for _, h := range errors.GetAllHints(err) {
		b.WriteString("\nHint: ")
		b.WriteString(h)
	}
	return mcplib.NewToolResultError(b.String())
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding result")
	}
	return mcplib.NewToolResultText(string(b)), nil
}

func renderResult(r report.Report, f report.Format) (*mcplib.CallToolResult, error) {
	out, err := report.Render(r, f)
	if err != nil {
		return nil, err
	}
	return mcplib.NewToolResultText(out), nil
}
