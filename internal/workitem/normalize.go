package workitem

// file: internal/workitem/normalize.go

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/basecamp"
)

// ErrMalformed marks an upstream record missing a required field. Callers
// drop the record and keep going.
var ErrMalformed = errors.New("malformed upstream record")

func malformed(kind Kind, id int64, field string) error {
	return errors.Mark(errors.Newf("%s %d: missing %s", kind, id, field), ErrMalformed)
}

// FromTodo normalizes a todo from list in project.
func FromTodo(project Project, list basecamp.TodoList, t basecamp.Todo) (Item, error) {
	title := firstNonEmpty(t.Content, t.Title)
	if t.ID == 0 {
		return Item{}, malformed(KindTodo, t.ID, "id")
	}
	if title == "" {
		return Item{}, malformed(KindTodo, t.ID, "title")
	}
	due, err := optionalDate(t.DueOn)
	if err != nil {
		return Item{}, errors.Mark(errors.Wrapf(err, "todo %d", t.ID), ErrMalformed)
	}
	return Item{
		Kind:          KindTodo,
		ID:            t.ID,
		Title:         title,
		Body:          t.Description,
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		ContainerName: firstNonEmpty(list.DisplayName(), t.Parent.Title),
		Assignees:     people(t.Assignees),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Completed:     t.Completed,
		DueOn:         due,
		URL:           t.AppURL,
	}, nil
}

// FromCard normalizes a card from column in project. Cards never count as
// completed.
func FromCard(project Project, column basecamp.CardColumn, c basecamp.Card) (Item, error) {
	if c.ID == 0 {
		return Item{}, malformed(KindCard, c.ID, "id")
	}
	if c.Title == "" {
		return Item{}, malformed(KindCard, c.ID, "title")
	}
	due, err := optionalDate(c.DueOn)
	if err != nil {
		return Item{}, errors.Mark(errors.Wrapf(err, "card %d", c.ID), ErrMalformed)
	}
	return Item{
		Kind:          KindCard,
		ID:            c.ID,
		Title:         c.Title,
		Body:          firstNonEmpty(c.Content, c.Description),
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		ContainerName: firstNonEmpty(column.Title, c.Parent.Title),
		Assignees:     people(c.Assignees),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		DueOn:         due,
		URL:           c.AppURL,
	}, nil
}

// FromScheduleEntry normalizes a schedule entry. The due date is the date
// the entry starts.
func FromScheduleEntry(project Project, e basecamp.ScheduleEntry) (Item, error) {
	title := firstNonEmpty(e.Summary, e.Title)
	if e.ID == 0 {
		return Item{}, malformed(KindScheduleEntry, e.ID, "id")
	}
	if title == "" {
		return Item{}, malformed(KindScheduleEntry, e.ID, "summary")
	}
	if e.StartsAt.IsZero() {
		return Item{}, malformed(KindScheduleEntry, e.ID, "starts_at")
	}
	due := DateOf(e.StartsAt)
	return Item{
		Kind:        KindScheduleEntry,
		ID:          e.ID,
		Title:       title,
		Body:        e.Description,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Assignees:   people(e.Participants),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		DueOn:       &due,
		URL:         e.AppURL,
	}, nil
}

// FromPerson converts an API person.
func FromPerson(p basecamp.Person) Person {
	return Person{ID: p.ID, Name: p.Name, Email: p.EmailAddress, Title: p.Title}
}

// People converts a slice of API people.
func People(in []basecamp.Person) []Person {
	return people(in)
}

func people(in []basecamp.Person) []Person {
	out := make([]Person, 0, len(in))
	for _, p := range in {
		out = append(out, FromPerson(p))
	}
	return out
}

func optionalDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
