// Package workitem defines the uniform Work Item model that todos, kanban
// cards and schedule entries are flattened into, and the normalizers that
// build it.
package workitem

// file: internal/workitem/workitem.go

import (
	"time"
)

// Kind identifies the source of a Work Item.
type Kind string

// Known kinds.
const (
	KindTodo          Kind = "todo"
	KindCard          Kind = "card"
	KindScheduleEntry Kind = "schedule_entry"
)

// Person is an assignee or a candidate in user lookup. Identity is by ID.
type Person struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Title string `json:"title,omitempty"`
}

// Item is a normalized todo, card or schedule entry. Items are values: they
// are built by the normalizers and not modified afterwards.
type Item struct {
	Kind          Kind      `json:"kind"`
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body,omitempty"`
	ProjectID     int64     `json:"project_id"`
	ProjectName   string    `json:"project_name"`
	ContainerName string    `json:"container_name,omitempty"`
	Assignees     []Person  `json:"assignees"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Completed     bool      `json:"completed"`
	DueOn         *Date     `json:"due_on,omitempty"`
	URL           string    `json:"url,omitempty"`
}

// HasDue reports whether the item carries a due date.
func (i Item) HasDue() bool { return i.DueOn != nil }

// LastActivity is the later of CreatedAt and UpdatedAt.
func (i Item) LastActivity() time.Time {
	if i.UpdatedAt.After(i.CreatedAt) {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// AssignedTo reports whether personID is among the assignees.
func (i Item) AssignedTo(personID int64) bool {
	for _, a := range i.Assignees {
		if a.ID == personID {
			return true
		}
	}
	return false
}

// IsActive reports whether the item still needs work.
func (i Item) IsActive() bool { return !i.Completed }

// Project identifies the project an item came from.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
