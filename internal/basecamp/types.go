package basecamp

// file: internal/basecamp/types.go

import (
	"encoding/json"
	"time"
)

// Project is a Basecamp project (bucket) with its dock.
type Project struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	URL         string      `json:"url"`
	AppURL      string      `json:"app_url"`
	Dock        []DockEntry `json:"dock"`
}

// DockEntry is one tool in a project's dock.
type DockEntry struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Position *int   `json:"position"`
	URL      string `json:"url"`
	AppURL   string `json:"app_url"`
}

// UnmarshalJSON reads an entry without an "enabled" field as enabled.
func (e *DockEntry) UnmarshalJSON(b []byte) error {
	type plain DockEntry
	aux := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// Person is a user visible to the authenticated account.
type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
	Title        string `json:"title"`
	Admin        bool   `json:"admin"`
}

// Parent references the recording an item lives in.
type Parent struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	URL    string `json:"url"`
	AppURL string `json:"app_url"`
}

// Bucket references the project an item lives in.
type Bucket struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// TodoList is a list inside a project's todo set.
type TodoList struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Completed      bool      `json:"completed"`
	CompletedRatio string    `json:"completed_ratio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	TodosURL       string    `json:"todos_url"`
	AppURL         string    `json:"app_url"`
}

// DisplayName returns the list's title, falling back to name.
func (l TodoList) DisplayName() string {
	if l.Title != "" {
		return l.Title
	}
	return l.Name
}

// Todo is a single todo item.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	StartsOn    string    `json:"starts_on"`
	DueOn       string    `json:"due_on"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Assignees   []Person  `json:"assignees"`
	Creator     *Person   `json:"creator"`
	Parent      Parent    `json:"parent"`
	Bucket      Bucket    `json:"bucket"`
	AppURL      string    `json:"app_url"`
}

// CardTable is a kanban board; its lists are the columns.
type CardTable struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Lists  []CardColumn `json:"lists"`
	Bucket Bucket       `json:"bucket"`
	AppURL string       `json:"app_url"`
}

// CardColumn is one column of a card table.
type CardColumn struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	CardsCount int    `json:"cards_count"`
	CardsURL   string `json:"cards_url"`
}

// Card is a kanban card.
type Card struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	DueOn       string    `json:"due_on"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Assignees   []Person  `json:"assignees"`
	Parent      Parent    `json:"parent"`
	Bucket      Bucket    `json:"bucket"`
	AppURL      string    `json:"app_url"`
}

// ScheduleEntry is an event on a project schedule.
type ScheduleEntry struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description"`
	AllDay       bool      `json:"all_day"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Participants []Person  `json:"participants"`
	Bucket       Bucket    `json:"bucket"`
	AppURL       string    `json:"app_url"`
}
