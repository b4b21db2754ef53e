// Package aggregate runs the project fetcher across many projects with
// bounded concurrency and folds the per-project results into one value.
// A failing project never affects the items gathered from the others.
package aggregate

// file: internal/aggregate/aggregate.go

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/dkoosis/camptools/internal/fsm"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/workitem"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// API is the part of the Basecamp client the aggregator needs.
type API interface {
	fetch.API
	ListProjects(ctx context.Context) ([]basecamp.Project, error)
}

// Recorder receives one call per aggregation.
type Recorder interface {
	RecordAggregation(projects, items, failures int, d time.Duration)
}

// Selection picks the projects to aggregate. All wins over ProjectIDs.
type Selection struct {
	All        bool    `json:"all"`
	ProjectIDs []int64 `json:"project_ids,omitempty"`
}

// ProjectError records a project that contributed nothing. ProjectID 0
// means the project listing itself failed.
type ProjectError struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name,omitempty"`
	Message     string `json:"message"`
	Err         error  `json:"-"`
}

// ProjectReport is the outcome of one project's run.
type ProjectReport struct {
	ProjectID   int64     `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	Status      fsm.State `json:"status"`
	Items       int       `json:"items"`
	Warnings    int       `json:"warnings"`
}

// Result is the folded outcome of an aggregation.
type Result struct {
	RunID          string          `json:"run_id"`
	Items          []workitem.Item `json:"items"`
	Errors         []ProjectError  `json:"errors"`
	Warnings       []fetch.Warning `json:"warnings"`
	Projects       []ProjectReport `json:"projects"`
	FiltersApplied map[string]any  `json:"filters_applied,omitempty"`
}

// Aggregator fans out over projects.
type Aggregator struct {
	api         API
	fetcher     *fetch.Fetcher
	concurrency int
	recorder    Recorder
	logger      logging.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Aggregator that walks at most projects projects at once,
// each with at most perProject nested fetches in flight.
func New(api API, projects, perProject int, opts ...Option) *Aggregator {
	a := &Aggregator{api: api, concurrency: max(projects, 1), logger: logging.GetLogger("aggregator")}
	for _, opt := range opts {
		opt(a)
	}
	a.fetcher = fetch.NewFetcher(api, perProject, a.logger)
	return a
}

type outcome struct {
	report   ProjectReport
	result   fetch.ProjectResult
	err      error
	hasError bool
}

// Aggregate fetches the selected projects. It never fails as a whole:
// problems are reported in Errors and Warnings next to whatever was gathered.
func (a *Aggregator) Aggregate(ctx context.Context, sel Selection, in fetch.Include) Result {
	start := time.Now()
	res := Result{
		RunID:    uuid.NewString(),
		Items:    []workitem.Item{},
		Errors:   []ProjectError{},
		Warnings: []fetch.Warning{},
		Projects: []ProjectReport{},
	}
	logger := a.logger.WithField("run_id", res.RunID)

	targets, err := a.targets(ctx, sel)
	if err != nil {
		logger.Error("Project listing failed.", "error", err)
		res.Errors = append(res.Errors, ProjectError{Message: err.Error(), Err: err})
		a.record(res, start)
		return res
	}
	logger.Info("Aggregation started.", "projects", len(targets))

	slots := make([]outcome, len(targets))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			slots[i] = a.runProject(ctx, target, in, logger)
			return nil
		})
	}
	g.Wait()

	for _, o := range slots {
		res.Projects = append(res.Projects, o.report)
		if o.hasError {
			res.Errors = append(res.Errors, ProjectError{
				ProjectID:   o.report.ProjectID,
				ProjectName: o.report.ProjectName,
				Message:     o.err.Error(),
				Err:         o.err,
			})
			continue
		}
		res.Items = append(res.Items, o.result.Items...)
		res.Warnings = append(res.Warnings, o.result.Warnings...)
	}

	logger.Info("Aggregation finished.",
		"projects", len(targets), "items", len(res.Items),
		"errors", len(res.Errors), "warnings", len(res.Warnings),
		"duration", time.Since(start))
	a.record(res, start)
	return res
}

func (a *Aggregator) record(res Result, start time.Time) {
	if a.recorder != nil {
		a.recorder.RecordAggregation(len(res.Projects), len(res.Items), len(res.Errors), time.Since(start))
	}
}

type target struct {
	id   int64
	name string
}

func (a *Aggregator) targets(ctx context.Context, sel Selection) ([]target, error) {
	if !sel.All {
		seen := make(map[int64]bool, len(sel.ProjectIDs))
		out := make([]target, 0, len(sel.ProjectIDs))
		for _, id := range sel.ProjectIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, target{id: id})
			}
		}
		return out, nil
	}
	projects, err := a.api.ListProjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "selecting all projects")
	}
	out := make([]target, 0, len(projects))
	for _, p := range projects {
		out = append(out, target{id: p.ID, name: p.Name})
	}
	return out, nil
}

func (a *Aggregator) runProject(ctx context.Context, t target, in fetch.Include, logger logging.Logger) outcome {
	o := outcome{report: ProjectReport{ProjectID: t.id, ProjectName: t.name}}
	run, err := newRun(logger)
	if err != nil {
		o.fail(err)
		return o
	}
	// The lifecycle must still reach failed after the caller's deadline.
	lifecycle := context.WithoutCancel(ctx)
	step := func(e fsm.Event) {
		if err := run.Transition(lifecycle, e, t.id); err != nil {
			logger.Warn("Project run transition rejected.", "project_id", t.id, "event", e, "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		step(eventFail)
		o.fail(errors.Wrapf(err, "project %d not started", t.id))
		o.report.Status = run.CurrentState()
		return o
	}

	step(eventStart)
	res, err := a.fetcher.Fetch(ctx, t.id, in)
	switch {
	case err != nil:
		step(eventFail)
		o.fail(err)
	case len(res.Warnings) > 0:
		step(eventDegrade)
	default:
		step(eventSucceed)
	}
	if err == nil {
		o.result = res
		o.report.Items = len(res.Items)
		o.report.Warnings = len(res.Warnings)
		if res.Project.Name != "" {
			o.report.ProjectName = res.Project.Name
		}
	}
	o.report.Status = run.CurrentState()
	logger.Debug("Project run finished.", "project_id", t.id, "status", o.report.Status, "items", o.report.Items)
	return o
}

func (o *outcome) fail(err error) {
	o.err = err
	o.hasError = true
}
