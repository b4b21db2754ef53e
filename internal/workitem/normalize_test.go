package workitem

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProject = Project{ID: 1, Name: "Launch"}

func TestFromTodo(t *testing.T) {
	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	list := basecamp.TodoList{ID: 20, Title: "Backend"}
	todo := basecamp.Todo{
		ID:          300,
		Content:     "Ship API",
		Description: "<div>details</div>",
		Completed:   true,
		DueOn:       "2026-10-20",
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
		Assignees:   []basecamp.Person{{ID: 7, Name: "Ann", EmailAddress: "ann@example.com"}},
	}

	item, err := FromTodo(testProject, list, todo)
	require.NoError(t, err)

	assert.Equal(t, KindTodo, item.Kind)
	assert.Equal(t, "Ship API", item.Title)
	assert.Equal(t, "Backend", item.ContainerName)
	assert.Equal(t, "Launch", item.ProjectName)
	assert.True(t, item.Completed, "completed is copied verbatim")
	assert.False(t, item.IsActive())
	require.True(t, item.HasDue())
	assert.Equal(t, "2026-10-20", item.DueOn.String())
	require.Len(t, item.Assignees, 1)
	assert.Equal(t, "ann@example.com", item.Assignees[0].Email)
}

func TestFromTodoUnassignedAndNoDue(t *testing.T) {
	item, err := FromTodo(testProject, basecamp.TodoList{ID: 1, Name: "Misc"}, basecamp.Todo{ID: 5, Title: "Loose end"})
	require.NoError(t, err)
	assert.Empty(t, item.Assignees)
	assert.NotNil(t, item.Assignees, "unassigned is an empty list, not null")
	assert.Nil(t, item.DueOn)
	assert.Equal(t, "Misc", item.ContainerName)
}

func TestFromTodoMalformed(t *testing.T) {
	_, err := FromTodo(testProject, basecamp.TodoList{}, basecamp.Todo{ID: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = FromTodo(testProject, basecamp.TodoList{}, basecamp.Todo{ID: 5, Title: "x", DueOn: "tomorrow"})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestFromCard(t *testing.T) {
	column := basecamp.CardColumn{ID: 40, Title: "In Progress"}
	card := basecamp.Card{ID: 400, Title: "Design review", Content: "Bring mocks", Completed: true}

	item, err := FromCard(testProject, column, card)
	require.NoError(t, err)
	assert.Equal(t, KindCard, item.Kind)
	assert.False(t, item.Completed, "cards are never completed")
	assert.Equal(t, "In Progress", item.ContainerName)
	assert.Equal(t, "Bring mocks", item.Body)
	assert.Nil(t, item.DueOn)

	_, err = FromCard(testProject, column, basecamp.Card{ID: 401})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestFromScheduleEntry(t *testing.T) {
	start := time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)
	entry := basecamp.ScheduleEntry{
		ID:           500,
		Summary:      "Sprint demo",
		StartsAt:     start,
		Participants: []basecamp.Person{{ID: 9, Name: "Bo"}},
	}

	item, err := FromScheduleEntry(testProject, entry)
	require.NoError(t, err)
	assert.Equal(t, KindScheduleEntry, item.Kind)
	assert.False(t, item.Completed)
	assert.Empty(t, item.ContainerName)
	require.NotNil(t, item.DueOn)
	assert.Equal(t, "2026-10-18", item.DueOn.String())
	assert.Equal(t, int64(9), item.Assignees[0].ID)

	_, err = FromScheduleEntry(testProject, basecamp.ScheduleEntry{ID: 501, Summary: "No start"})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDateArithmetic(t *testing.T) {
	d, err := ParseDate("2026-10-16")
	require.NoError(t, err)

	assert.Equal(t, time.Friday, d.Weekday())
	assert.Equal(t, "2026-10-26", d.AddDays(10).String())
	assert.Equal(t, -10, d.DaysSince(d.AddDays(10)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))

	// Across a DST change in a zone that has one.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	before := Today(time.Date(2026, 11, 1, 0, 30, 0, 0, ny), ny)
	assert.Equal(t, 7, before.AddDays(7).DaysSince(before))
}

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.March, Day: 4}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-03-04"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestLastActivity(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := Item{CreatedAt: created}
	assert.Equal(t, created, i.LastActivity())
	i.UpdatedAt = created.Add(48 * time.Hour)
	assert.Equal(t, i.UpdatedAt, i.LastActivity())
}
