package aggregate_test

// file: internal/aggregate/aggregate_test.go

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/basecamp/basecamptest"
	"github.com/dkoosis/camptools/internal/dock"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	projects, items, failures int
}

func (r *recorder) RecordAggregation(projects, items, failures int, _ time.Duration) {
	r.projects, r.items, r.failures = projects, items, failures
}

func projectPath(id int64) string { return fmt.Sprintf("projects/%d.json", id) }

func path(format string, args ...any) string { return fmt.Sprintf(format, args...) }

func withTodos(srv *basecamptest.Server, id int64, name string, titles ...string) {
	srv.JSON(projectPath(id), basecamp.Project{ID: id, Name: name, Dock: []basecamp.DockEntry{
		{ID: id * 10, Name: "todoset", Enabled: true},
	}})
	srv.JSON(path("buckets/%d/todosets/%d/todolists.json", id, id*10), []basecamp.TodoList{{ID: id * 100, Title: "List"}})
	todos := make([]basecamp.Todo, len(titles))
	for i, title := range titles {
		todos[i] = basecamp.Todo{ID: id*1000 + int64(i), Content: title}
	}
	srv.JSON(path("buckets/%d/todolists/%d/todos.json", id, id*100), todos)
}

func TestAggregateIsolatesProjectFailure(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Fail(projectPath(1), http.StatusNotFound)
	withTodos(srv, 2, "Beta", "b1", "b2")

	rec := &recorder{}
	agg := aggregate.New(srv.Client(), 4, 2, aggregate.WithRecorder(rec))
	res := agg.Aggregate(context.Background(), aggregate.Selection{ProjectIDs: []int64{1, 2}}, fetch.Include{Todos: true})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(1), res.Errors[0].ProjectID)
	assert.True(t, errors.Is(res.Errors[0].Err, dock.ErrProjectNotFound))

	require.Len(t, res.Items, 2)
	for _, it := range res.Items {
		assert.Equal(t, int64(2), it.ProjectID)
	}

	require.Len(t, res.Projects, 2)
	assert.Equal(t, aggregate.StateFailed, res.Projects[0].Status)
	assert.Equal(t, aggregate.StateComplete, res.Projects[1].Status)
	assert.Equal(t, "Beta", res.Projects[1].ProjectName)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, 2, rec.projects)
	assert.Equal(t, 2, rec.items)
	assert.Equal(t, 1, rec.failures)
}

func TestAggregateAllProjects(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Pages("projects.json",
		[]basecamp.Project{{ID: 1, Name: "Alpha"}},
		[]basecamp.Project{{ID: 2, Name: "Beta"}},
	)
	withTodos(srv, 1, "Alpha", "a1")
	withTodos(srv, 2, "Beta", "b1")

	agg := aggregate.New(srv.Client(), 2, 2)
	res := agg.Aggregate(context.Background(), aggregate.Selection{All: true}, fetch.Include{Todos: true})

	assert.Empty(t, res.Errors)
	assert.Len(t, res.Items, 2)
	require.Len(t, res.Projects, 2)
	assert.Equal(t, "Alpha", res.Projects[0].ProjectName)
	assert.Equal(t, "Beta", res.Projects[1].ProjectName)
}

func TestAggregatePartialProject(t *testing.T) {
	srv := basecamptest.NewServer(t)
	withTodos(srv, 3, "Gamma", "g1")
	srv.JSON(projectPath(3), basecamp.Project{ID: 3, Name: "Gamma", Dock: []basecamp.DockEntry{
		{ID: 30, Name: "todoset", Enabled: true},
		{ID: 31, Name: "schedule", Enabled: true},
	}})
	srv.Fail("buckets/3/schedules/31/entries.json", http.StatusBadGateway)

	agg := aggregate.New(srv.Client(), 1, 1)
	res := agg.Aggregate(context.Background(), aggregate.Selection{ProjectIDs: []int64{3, 3}},
		fetch.Include{Todos: true, Schedule: true})

	assert.Empty(t, res.Errors)
	require.Len(t, res.Projects, 1, "duplicate ids are fetched once")
	assert.Equal(t, aggregate.StatePartial, res.Projects[0].Status)
	assert.Len(t, res.Items, 1)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.Is(res.Warnings[0].Err, fetch.ErrSubResource))
}

func TestAggregateListingFailure(t *testing.T) {
	srv := basecamptest.NewServer(t)
	srv.Fail("projects.json", http.StatusUnauthorized)

	res := aggregate.New(srv.Client(), 2, 2).Aggregate(context.Background(), aggregate.Selection{All: true}, fetch.Everything)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(0), res.Errors[0].ProjectID)
	assert.Empty(t, res.Items)
	assert.True(t, basecamp.IsUnauthorized(res.Errors[0].Err))
}

func TestAggregateCanceledContext(t *testing.T) {
	srv := basecamptest.NewServer(t)
	withTodos(srv, 1, "Alpha", "a1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := aggregate.New(srv.Client(), 1, 1).Aggregate(ctx, aggregate.Selection{ProjectIDs: []int64{1}}, fetch.Include{Todos: true})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, aggregate.StateFailed, res.Projects[0].Status)
	assert.Empty(t, srv.Requests())
}

func TestAggregateTimedOutProjectIsIsolated(t *testing.T) {
	srv := basecamptest.NewServer(t)
	withTodos(srv, 1, "Alpha", "a1")
	srv.Delay(projectPath(1), 500*time.Millisecond)
	withTodos(srv, 2, "Beta", "b1", "b2")

	agg := aggregate.New(srv.Client(basecamp.WithTimeout(50*time.Millisecond)), 2, 1)
	res := agg.Aggregate(context.Background(), aggregate.Selection{ProjectIDs: []int64{1, 2}}, fetch.Include{Todos: true})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(1), res.Errors[0].ProjectID)
	assert.True(t, errors.Is(res.Errors[0].Err, dock.ErrProjectNotFound))
	assert.True(t, errors.Is(res.Errors[0].Err, basecamp.ErrTimeout), "got %v", res.Errors[0].Err)
	assert.Len(t, res.Items, 2)
	require.Len(t, res.Projects, 2)
	assert.Equal(t, aggregate.StateFailed, res.Projects[0].Status)
	assert.Equal(t, aggregate.StateComplete, res.Projects[1].Status)
}

func TestAggregateDeadlineDuringWalk(t *testing.T) {
	srv := basecamptest.NewServer(t)
	withTodos(srv, 1, "Alpha", "a1")
	srv.Delay(path("buckets/1/todosets/10/todolists.json"), 2*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := aggregate.New(srv.Client(), 1, 1).Aggregate(ctx, aggregate.Selection{ProjectIDs: []int64{1}}, fetch.Include{Todos: true})
	require.Len(t, res.Projects, 1)
	assert.Equal(t, aggregate.StatePartial, res.Projects[0].Status, "the run settles even after the deadline")
	assert.Empty(t, res.Items)
	require.NotEmpty(t, res.Warnings)
	assert.True(t, errors.Is(res.Warnings[0].Err, basecamp.ErrTimeout), "got %v", res.Warnings[0].Err)
}
