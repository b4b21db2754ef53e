package basecamp

// file: internal/basecamp/endpoints.go

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// ListProjects returns all active projects visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := getAll[Project](ctx, c, "projects.json")
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}
	return projects, nil
}

// GetProject returns one project including its dock.
func (c *Client) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	var p Project
	if _, err := c.get(ctx, fmt.Sprintf("projects/%d.json", projectID), &p); err != nil {
		return nil, errors.Wrapf(err, "getting project %d", projectID)
	}
	return &p, nil
}

// ListTodoLists returns the todo lists of a todo set.
func (c *Client) ListTodoLists(ctx context.Context, projectID, todosetID int64) ([]TodoList, error) {
	lists, err := getAll[TodoList](ctx, c, fmt.Sprintf("buckets/%d/todosets/%d/todolists.json", projectID, todosetID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing todo lists of todoset %d", todosetID)
	}
	return lists, nil
}

// ListTodos returns the active todos of a todo list.
func (c *Client) ListTodos(ctx context.Context, projectID, todolistID int64) ([]Todo, error) {
	todos, err := getAll[Todo](ctx, c, fmt.Sprintf("buckets/%d/todolists/%d/todos.json", projectID, todolistID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing todos of todolist %d", todolistID)
	}
	return todos, nil
}

// ListCompletedTodos returns the completed todos of a todo list.
func (c *Client) ListCompletedTodos(ctx context.Context, projectID, todolistID int64) ([]Todo, error) {
	todos, err := getAll[Todo](ctx, c, fmt.Sprintf("buckets/%d/todolists/%d/todos.json?completed=true", projectID, todolistID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing completed todos of todolist %d", todolistID)
	}
	return todos, nil
}

// GetCardTable returns a card table with its columns.
func (c *Client) GetCardTable(ctx context.Context, projectID, tableID int64) (*CardTable, error) {
	var t CardTable
	if _, err := c.get(ctx, fmt.Sprintf("buckets/%d/card_tables/%d.json", projectID, tableID), &t); err != nil {
		return nil, errors.Wrapf(err, "getting card table %d", tableID)
	}
	return &t, nil
}

// ListCards returns the cards of one card table column.
func (c *Client) ListCards(ctx context.Context, projectID, columnID int64) ([]Card, error) {
	cards, err := getAll[Card](ctx, c, fmt.Sprintf("buckets/%d/card_tables/lists/%d/cards.json", projectID, columnID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing cards of column %d", columnID)
	}
	return cards, nil
}

// ListScheduleEntries returns the entries of a schedule.
func (c *Client) ListScheduleEntries(ctx context.Context, projectID, scheduleID int64) ([]ScheduleEntry, error) {
	entries, err := getAll[ScheduleEntry](ctx, c, fmt.Sprintf("buckets/%d/schedules/%d/entries.json", projectID, scheduleID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing entries of schedule %d", scheduleID)
	}
	return entries, nil
}

// ListPeople returns everyone visible to the token.
func (c *Client) ListPeople(ctx context.Context) ([]Person, error) {
	people, err := getAll[Person](ctx, c, "people.json")
	if err != nil {
		return nil, errors.Wrap(err, "listing people")
	}
	return people, nil
}

// ListProjectPeople returns the people on one project.
func (c *Client) ListProjectPeople(ctx context.Context, projectID int64) ([]Person, error) {
	people, err := getAll[Person](ctx, c, fmt.Sprintf("projects/%d/people.json", projectID))
	if err != nil {
		return nil, errors.Wrapf(err, "listing people of project %d", projectID)
	}
	return people, nil
}
