// Package workload groups work items by assignee and rates each person's
// load and overdue risk.
package workload

// file: internal/workload/workload.go

import (
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
)

// Tier is a capacity label derived from total workload.
type Tier string

// Tiers, lightest first.
const (
	TierNoAssignments Tier = "no_assignments"
	TierLight         Tier = "light"
	TierModerate      Tier = "moderate"
	TierHeavy         Tier = "heavy"
	TierOverloaded    Tier = "overloaded"
)

// TierFor maps a total workload to its tier.
func TierFor(total int) Tier {
	switch {
	case total <= 0:
		return TierNoAssignments
	case total <= 3:
		return TierLight
	case total <= 8:
		return TierModerate
	case total <= 15:
		return TierHeavy
	}
	return TierOverloaded
}

// RiskFor maps an overdue count to a risk level.
func RiskFor(overdue int) string {
	switch {
	case overdue > 5:
		return triage.RiskHigh
	case overdue > 2:
		return triage.RiskMedium
	case overdue > 0:
		return triage.RiskLow
	}
	return triage.RiskNone
}

// SortKey selects the order of Analyze's output.
type SortKey string

// Sort keys.
const (
	SortByWorkload SortKey = "workload"
	SortByOverdue  SortKey = "overdue"
	SortByName     SortKey = "name"
)

// ParseSortKey validates a sort key. Empty means SortByWorkload.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortByWorkload, nil
	case SortByWorkload, SortByOverdue, SortByName:
		return k, nil
	}
	return "", errors.WithHint(errors.Newf("unknown sort key %q", s), "Use workload, overdue or name.")
}

// OverdueItem describes one overdue todo of a person.
type OverdueItem struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	ProjectName string        `json:"project_name"`
	DueOn       workitem.Date `json:"due_on"`
	DaysOverdue int           `json:"days_overdue"`
	URL         string        `json:"url,omitempty"`
}

// PersonWorkload is one person's load. Schedule entries are not work and
// are not counted.
type PersonWorkload struct {
	Person         workitem.Person `json:"person"`
	ActiveTodos    int             `json:"active_todos"`
	CompletedTodos int             `json:"completed_todos"`
	OverdueTodos   int             `json:"overdue_todos"`
	Cards          int             `json:"cards"`
	Projects       []string        `json:"projects"`
	OverdueItems   []OverdueItem   `json:"overdue_items"`
	TotalWorkload  int             `json:"total_workload"`
	CompletionRate float64         `json:"completion_rate"`
	Status         Tier            `json:"workload_status"`
	RiskLevel      string          `json:"risk_level"`
}

type tally struct {
	w        PersonWorkload
	projects map[string]struct{}
}

// Analyze builds a PersonWorkload for every person in people, including
// those with nothing assigned, plus any assignee found on items but missing
// from people. Output is ordered by key.
func Analyze(items []workitem.Item, people []workitem.Person, clock triage.Clock, key SortKey) []PersonWorkload {
	today := clock.Today()
	order := make([]int64, 0, len(people))
	tallies := make(map[int64]*tally, len(people))
	get := func(p workitem.Person) *tally {
		if t, ok := tallies[p.ID]; ok {
			return t
		}
		t := &tally{
			w:        PersonWorkload{Person: p, Projects: []string{}, OverdueItems: []OverdueItem{}},
			projects: make(map[string]struct{}),
		}
		tallies[p.ID] = t
		order = append(order, p.ID)
		return t
	}
	for _, p := range people {
		get(p)
	}

	for _, it := range items {
		if it.Kind == workitem.KindScheduleEntry {
			continue
		}
		for _, a := range it.Assignees {
			t := get(a)
			t.projects[it.ProjectName] = struct{}{}
			switch {
			case it.Kind == workitem.KindCard:
				t.w.Cards++
			case it.Completed:
				t.w.CompletedTodos++
			default:
				t.w.ActiveTodos++
				if it.HasDue() && it.DueOn.Before(today) {
					t.w.OverdueTodos++
					t.w.OverdueItems = append(t.w.OverdueItems, OverdueItem{
						ID:          it.ID,
						Title:       it.Title,
						ProjectName: it.ProjectName,
						DueOn:       *it.DueOn,
						DaysOverdue: today.DaysSince(*it.DueOn),
						URL:         it.URL,
					})
				}
			}
		}
	}

	out := make([]PersonWorkload, 0, len(order))
	for _, id := range order {
		t := tallies[id]
		w := t.w
		for name := range t.projects {
			if name != "" {
				w.Projects = append(w.Projects, name)
			}
		}
		sort.Strings(w.Projects)
		sort.SliceStable(w.OverdueItems, func(i, j int) bool {
			return w.OverdueItems[i].DaysOverdue > w.OverdueItems[j].DaysOverdue
		})
		w.TotalWorkload = w.ActiveTodos + w.Cards
		if denom := w.CompletedTodos + w.ActiveTodos; denom > 0 {
			w.CompletionRate = float64(w.CompletedTodos) / float64(denom)
		}
		w.Status = TierFor(w.TotalWorkload)
		w.RiskLevel = RiskFor(w.OverdueTodos)
		out = append(out, w)
	}
	Sort(out, key)
	return out
}

// Sort orders workloads in place. Ties fall back to name, then id.
func Sort(ws []PersonWorkload, key SortKey) {
	byName := func(a, b PersonWorkload) int {
		if c := strings.Compare(strings.ToLower(a.Person.Name), strings.ToLower(b.Person.Name)); c != 0 {
			return c
		}
		switch {
		case a.Person.ID < b.Person.ID:
			return -1
		case a.Person.ID > b.Person.ID:
			return 1
		}
		return 0
	}
	slices.SortStableFunc(ws, func(a, b PersonWorkload) int {
		switch key {
		case SortByName:
		case SortByOverdue:
			if d := b.OverdueTodos - a.OverdueTodos; d != 0 {
				return d
			}
			if d := b.TotalWorkload - a.TotalWorkload; d != 0 {
				return d
			}
		default:
			if d := b.TotalWorkload - a.TotalWorkload; d != 0 {
				return d
			}
		}
		return byName(a, b)
	})
}
