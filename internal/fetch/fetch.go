// Package fetch walks one project's todo set, card table and schedule and
// returns the normalized work items it finds. Failures below the project
// level become warnings; the walk always continues.
package fetch

// file: internal/fetch/fetch.go

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/dock"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/workitem"
	"golang.org/x/sync/errgroup"
)

// ErrSubResource marks a failed fetch of a todo list, column, card table or
// schedule inside an otherwise reachable project.
var ErrSubResource = errors.New("sub-resource fetch failed")

// API is the part of the Basecamp client the fetcher uses.
type API interface {
	dock.ProjectGetter
	ListTodoLists(ctx context.Context, projectID, todosetID int64) ([]basecamp.TodoList, error)
	ListTodos(ctx context.Context, projectID, todolistID int64) ([]basecamp.Todo, error)
	ListCompletedTodos(ctx context.Context, projectID, todolistID int64) ([]basecamp.Todo, error)
	GetCardTable(ctx context.Context, projectID, tableID int64) (*basecamp.CardTable, error)
	ListCards(ctx context.Context, projectID, columnID int64) ([]basecamp.Card, error)
	ListScheduleEntries(ctx context.Context, projectID, scheduleID int64) ([]basecamp.ScheduleEntry, error)
}

// Include selects which sources to walk.
type Include struct {
	Todos    bool `json:"todos"`
	Cards    bool `json:"cards"`
	Schedule bool `json:"schedule"`

	// CompletedTodos also fetches completed todos of every list.
	CompletedTodos bool `json:"completed_todos"`

	// Required capabilities produce a warning when the project lacks them.
	Required []dock.Capability `json:"required,omitempty"`
}

// Everything walks every source, completed todos included.
var Everything = Include{Todos: true, CompletedTodos: true, Cards: true, Schedule: true}

// Empty reports whether nothing is selected.
func (in Include) Empty() bool {
	return !in.Todos && !in.Cards && !in.Schedule
}

// Warning kinds.
const (
	WarnCapabilityNotFound = "capability_not_found"
	WarnSubResource        = "sub_resource_failed"
	WarnMalformed          = "malformed_record"
)

// Warning is a non-fatal problem found while walking a project.
type Warning struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name,omitempty"`
	Kind        string `json:"kind"`
	Resource    string `json:"resource"`
	Message     string `json:"message"`
	Err         error  `json:"-"`
}

// ProjectResult is everything gathered from one project.
type ProjectResult struct {
	Project  workitem.Project `json:"project"`
	Items    []workitem.Item  `json:"items"`
	Warnings []Warning        `json:"warnings"`
}

// Fetcher walks projects. It is safe for concurrent use.
type Fetcher struct {
	api         API
	dock        *dock.Client
	concurrency int
	logger      logging.Logger
}

// NewFetcher returns a Fetcher that runs at most concurrency nested fetches
// at once per project.
func NewFetcher(api API, concurrency int, logger logging.Logger) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Fetcher{
		api:         api,
		dock:        dock.NewClient(api, logger),
		concurrency: concurrency,
		logger:      logger.WithField("component", "fetcher"),
	}
}

// Fetch reads the dock of projectID once and walks the selected sources.
// The only error returned is a whole-project failure marked
// dock.ErrProjectNotFound. Items keep source order: todo lists, then card
// columns, then schedule entries.
func (f *Fetcher) Fetch(ctx context.Context, projectID int64, in Include) (ProjectResult, error) {
	dir, err := f.dock.Directory(ctx, projectID)
	if err != nil {
		return ProjectResult{Project: workitem.Project{ID: projectID}}, err
	}
	w := &walk{
		f:       f,
		dir:     dir,
		project: workitem.Project{ID: dir.ProjectID, Name: dir.ProjectName},
	}

	for _, c := range in.Required {
		if !dir.Has(c) {
			w.warn(WarnCapabilityNotFound, string(c), errors.Mark(
				errors.Newf("project has no %s enabled", c), dock.ErrCapabilityNotFound))
		}
	}

	var parts []chunk
	if in.Todos {
		parts = append(parts, w.todos(ctx, in.CompletedTodos)...)
	}
	if in.Cards {
		parts = append(parts, w.cards(ctx)...)
	}
	if in.Schedule {
		parts = append(parts, w.schedule(ctx))
	}

	res := ProjectResult{Project: w.project, Items: []workitem.Item{}, Warnings: w.warnings}
	for _, p := range parts {
		res.Items = append(res.Items, p.items...)
		res.Warnings = append(res.Warnings, p.warnings...)
	}
	if res.Warnings == nil {
		res.Warnings = []Warning{}
	}
	f.logger.Debug("Project walked.", "project_id", projectID, "items", len(res.Items), "warnings", len(res.Warnings))
	return res, nil
}

// chunk is the output of one nested fetch. Goroutines each fill their own
// slot; slots are concatenated in source order after Wait.
type chunk struct {
	items    []workitem.Item
	warnings []Warning
}

func (c *chunk) warn(p workitem.Project, kind, resource string, err error) {
	c.warnings = append(c.warnings, Warning{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Kind:        kind,
		Resource:    resource,
		Message:     err.Error(),
		Err:         err,
	})
}

func (c *chunk) add(p workitem.Project, item workitem.Item, err error, resource string) {
	if err != nil {
		c.warn(p, WarnMalformed, resource, err)
		return
	}
	c.items = append(c.items, item)
}

type walk struct {
	f        *Fetcher
	dir      dock.Directory
	project  workitem.Project
	warnings []Warning
}

func (w *walk) warn(kind, resource string, err error) {
	var c chunk
	c.warn(w.project, kind, resource, err)
	w.warnings = append(w.warnings, c.warnings...)
}

func (w *walk) subResourceFailure(resource string, err error) error {
	w.f.logger.Warn("Sub-resource fetch failed.", "project_id", w.project.ID, "resource", resource, "error", err)
	return errors.Mark(errors.Wrapf(err, "%s", resource), ErrSubResource)
}

func (w *walk) todos(ctx context.Context, completed bool) []chunk {
	todosetID, ok := w.lookup(dock.Todoset)
	if !ok {
		return nil
	}
	lists, err := w.f.api.ListTodoLists(ctx, w.project.ID, todosetID)
	if err != nil {
		resource := fmt.Sprintf("todoset/%d", todosetID)
		var c chunk
		c.warn(w.project, WarnSubResource, resource, w.subResourceFailure(resource, err))
		return []chunk{c}
	}

	slots := make([]chunk, len(lists))
	w.fanOut(len(lists), func(i int) {
		list := lists[i]
		resource := fmt.Sprintf("todolist/%d", list.ID)
		todos, err := w.f.api.ListTodos(ctx, w.project.ID, list.ID)
		if err != nil {
			slots[i].warn(w.project, WarnSubResource, resource, w.subResourceFailure(resource, err))
			return
		}
		if completed {
			done, err := w.f.api.ListCompletedTodos(ctx, w.project.ID, list.ID)
			if err != nil {
				slots[i].warn(w.project, WarnSubResource, resource+"/completed", w.subResourceFailure(resource+"/completed", err))
			}
			todos = append(todos, done...)
		}
		for _, t := range todos {
			item, err := workitem.FromTodo(w.project, list, t)
			slots[i].add(w.project, item, err, resource)
		}
	})
	return slots
}

func (w *walk) cards(ctx context.Context) []chunk {
	tableID, ok := w.lookup(dock.KanbanBoard)
	if !ok {
		return nil
	}
	table, err := w.f.api.GetCardTable(ctx, w.project.ID, tableID)
	if err != nil {
		resource := fmt.Sprintf("card_table/%d", tableID)
		var c chunk
		c.warn(w.project, WarnSubResource, resource, w.subResourceFailure(resource, err))
		return []chunk{c}
	}

	slots := make([]chunk, len(table.Lists))
	w.fanOut(len(table.Lists), func(i int) {
		column := table.Lists[i]
		resource := fmt.Sprintf("column/%d", column.ID)
		cards, err := w.f.api.ListCards(ctx, w.project.ID, column.ID)
		if err != nil {
			slots[i].warn(w.project, WarnSubResource, resource, w.subResourceFailure(resource, err))
			return
		}
		for _, card := range cards {
			item, err := workitem.FromCard(w.project, column, card)
			slots[i].add(w.project, item, err, resource)
		}
	})
	return slots
}

func (w *walk) schedule(ctx context.Context) chunk {
	var c chunk
	scheduleID, ok := w.lookup(dock.Schedule)
	if !ok {
		return c
	}
	resource := fmt.Sprintf("schedule/%d", scheduleID)
	entries, err := w.f.api.ListScheduleEntries(ctx, w.project.ID, scheduleID)
	if err != nil {
		c.warn(w.project, WarnSubResource, resource, w.subResourceFailure(resource, err))
		return c
	}
	for _, e := range entries {
		item, err := workitem.FromScheduleEntry(w.project, e)
		c.add(w.project, item, err, resource)
	}
	return c
}

func (w *walk) lookup(c dock.Capability) (int64, bool) {
	e, ok := w.dir.Lookup(c)
	return e.ID, ok
}

// fanOut runs fn(0..n-1) with bounded concurrency and waits for all of them.
func (w *walk) fanOut(n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(w.f.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	g.Wait()
}
