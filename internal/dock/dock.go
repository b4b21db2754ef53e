// Package dock resolves a project's capabilities (todo set, message board,
// schedule, card table...) to the resource IDs listed in its dock.
package dock

// file: internal/dock/dock.go

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/logging"
)

// Capability is one of the dock tools a project may enable.
type Capability string

// Known capabilities. Dock entries with any other name are ignored.
const (
	Todoset       Capability = "todoset"
	MessageBoard  Capability = "message_board"
	Vault         Capability = "vault"
	Chat          Capability = "chat"
	Schedule      Capability = "schedule"
	KanbanBoard   Capability = "kanban_board"
	Questionnaire Capability = "questionnaire"
	Inbox         Capability = "inbox"
)

// Capabilities lists every known capability in dock order.
var Capabilities = []Capability{Todoset, MessageBoard, Vault, Chat, Schedule, KanbanBoard, Questionnaire, Inbox}

var aliases = map[string]Capability{
	"todos":      Todoset,
	"todo_set":   Todoset,
	"todo_list":  Todoset,
	"todolist":   Todoset,
	"messages":   MessageBoard,
	"message":    MessageBoard,
	"docs":       Vault,
	"documents":  Vault,
	"campfire":   Chat,
	"card_table": KanbanBoard,
	"cards":      KanbanBoard,
	"kanban":     KanbanBoard,
	"checkins":   Questionnaire,
	"check_ins":  Questionnaire,
	"email":      Inbox,
	"forwards":   Inbox,
	"calendar":   Schedule,
}

// Sentinel markers. Errors returned by this package are marked with one of
// these; test with errors.Is.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrCapabilityNotFound = errors.New("capability not found")
	ErrUnknownCapability  = errors.New("unknown capability")
)

// ParseCapability maps a user-supplied name ("todo list", "Message Board",
// "card_table") to a Capability.
func ParseCapability(name string) (Capability, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for _, c := range Capabilities {
		if string(c) == key {
			return c, nil
		}
	}
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	err := errors.Mark(errors.Newf("unknown capability %q", name), ErrUnknownCapability)
	return "", errors.WithHintf(err, "Known capabilities: %s.", joinCapabilities())
}

func joinCapabilities() string {
	names := make([]string, len(Capabilities))
	for i, c := range Capabilities {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Entry is a resolved dock entry.
type Entry struct {
	Capability Capability `json:"capability"`
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
}

// Directory is a project's parsed dock. Only enabled entries with a known
// capability are kept, in dock order.
type Directory struct {
	ProjectID   int64   `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Entries     []Entry `json:"entries"`
}

// NewDirectory parses the dock of p.
func NewDirectory(p basecamp.Project) Directory {
	d := Directory{ProjectID: p.ID, ProjectName: p.Name, Entries: make([]Entry, 0, len(p.Dock))}
	for _, e := range p.Dock {
		if !e.Enabled {
			continue
		}
		c, ok := known(e.Name)
		if !ok {
			continue
		}
		d.Entries = append(d.Entries, Entry{Capability: c, ID: e.ID, Title: e.Title, URL: e.URL})
	}
	return d
}

func known(name string) (Capability, bool) {
	for _, c := range Capabilities {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Lookup returns the first entry for c.
func (d Directory) Lookup(c Capability) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Capability == c {
			return e, true
		}
	}
	return Entry{}, false
}

// Has reports whether the project has c enabled.
func (d Directory) Has(c Capability) bool {
	_, ok := d.Lookup(c)
	return ok
}

// ID returns the resource ID for c, or an error marked ErrCapabilityNotFound.
func (d Directory) ID(c Capability) (int64, error) {
	e, ok := d.Lookup(c)
	if !ok {
		err := errors.Mark(errors.Newf("project %d has no %s enabled", d.ProjectID, c), ErrCapabilityNotFound)
		return 0, errors.WithHint(err, "The tool may be disabled in the project's settings.")
	}
	return e.ID, nil
}

// ProjectGetter fetches one project with its dock. *basecamp.Client
// satisfies it.
type ProjectGetter interface {
	GetProject(ctx context.Context, projectID int64) (*basecamp.Project, error)
}

// Client resolves capabilities by reading project docks. Nothing is cached;
// every call fetches the project again.
type Client struct {
	api    ProjectGetter
	logger logging.Logger
}

// NewClient returns a Client backed by api.
func NewClient(api ProjectGetter, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Client{api: api, logger: logger.WithField("component", "dock")}
}

// Directory fetches projectID once and returns its parsed dock. Any fetch
// failure, including timeouts and malformed JSON, is marked ErrProjectNotFound.
func (c *Client) Directory(ctx context.Context, projectID int64) (Directory, error) {
	p, err := c.api.GetProject(ctx, projectID)
	if err != nil {
		c.logger.Debug("Project fetch failed.", "project_id", projectID, "error", err)
		err = errors.Mark(errors.Wrapf(err, "project %d", projectID), ErrProjectNotFound)
		if basecamp.IsUnauthorized(err) {
			err = errors.WithHint(err, "Check the access token and account ID.")
		}
		return Directory{}, err
	}
	if p.ID == 0 {
		p.ID = projectID
	}
	return NewDirectory(*p), nil
}

// Resolve returns the resource ID of capability c in projectID.
func (c *Client) Resolve(ctx context.Context, projectID int64, capability Capability) (int64, error) {
	d, err := c.Directory(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return d.ID(capability)
}
