package triage

// file: internal/triage/assignee.go

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkoosis/camptools/internal/workitem"
)

// MaxSuggestions caps the candidates offered when no person matches exactly.
const MaxSuggestions = 5

// Match methods.
const (
	MatchID    = "id"
	MatchEmail = "email"
	MatchName  = "name"
)

// Resolution is the outcome of looking a person up. When Found is false,
// Suggestions holds the closest candidates; an empty list means nobody
// came close.
type Resolution struct {
	Query       string            `json:"query"`
	Found       bool              `json:"found"`
	MatchedBy   string            `json:"matched_by,omitempty"`
	Person      *workitem.Person  `json:"person,omitempty"`
	Suggestions []workitem.Person `json:"suggestions,omitempty"`
}

// Message is a one-line human summary.
func (r Resolution) Message() string {
	if r.Found {
		return fmt.Sprintf("%q matched %s (id %d) by %s.", r.Query, r.Person.Name, r.Person.ID, r.MatchedBy)
	}
	if len(r.Suggestions) == 0 {
		return fmt.Sprintf("No person matches %q.", r.Query)
	}
	names := make([]string, len(r.Suggestions))
	for i, p := range r.Suggestions {
		names[i] = p.Name
	}
	return fmt.Sprintf("No person matches %q. Did you mean: %s?", r.Query, strings.Join(names, ", "))
}

// ResolveAssignee finds the person query refers to. It tries an exact
// numeric id, then an exact email, then an exact name (both
// case-insensitive). It never guesses: a partial match only produces
// suggestions.
func ResolveAssignee(query string, people []workitem.Person) Resolution {
	q := strings.TrimSpace(query)
	res := Resolution{Query: q}
	if q == "" {
		return res
	}

	if id, err := strconv.ParseInt(q, 10, 64); err == nil {
		if p, ok := find(people, func(p workitem.Person) bool { return p.ID == id }); ok {
			return res.found(p, MatchID)
		}
	}
	if p, ok := find(people, func(p workitem.Person) bool { return p.Email != "" && strings.EqualFold(p.Email, q) }); ok {
		return res.found(p, MatchEmail)
	}
	if p, ok := find(people, func(p workitem.Person) bool { return strings.EqualFold(p.Name, q) }); ok {
		return res.found(p, MatchName)
	}

	lower := strings.ToLower(q)
	for _, p := range people {
		if len(res.Suggestions) == MaxSuggestions {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), lower) || strings.Contains(strings.ToLower(p.Email), lower) {
			res.Suggestions = append(res.Suggestions, p)
		}
	}
	return res
}

func (r Resolution) found(p workitem.Person, by string) Resolution {
	r.Found = true
	r.MatchedBy = by
	r.Person = &p
	return r
}

func find(people []workitem.Person, match func(workitem.Person) bool) (workitem.Person, bool) {
	for _, p := range people {
		if match(p) {
			return p, true
		}
	}
	return workitem.Person{}, false
}
