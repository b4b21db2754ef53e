package workload

// file: internal/workload/summary.go

import (
	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
)

// TeamSummary totals a set of workloads.
type TeamSummary struct {
	People          int          `json:"people"`
	ActiveTodos     int          `json:"active_todos"`
	CompletedTodos  int          `json:"completed_todos"`
	OverdueTodos    int          `json:"overdue_todos"`
	Cards           int          `json:"cards"`
	TotalWorkload   int          `json:"total_workload"`
	AverageWorkload float64      `json:"average_workload"`
	CompletionRate  float64      `json:"completion_rate"`
	ByStatus        map[Tier]int `json:"by_status"`
	Overloaded      []string     `json:"overloaded"`
	AtRisk          []string     `json:"at_risk"`
	Idle            []string     `json:"idle"`
	Unassigned      int          `json:"unassigned_items"`
}

// Summarize totals ws. unassigned is the number of open items nobody owns,
// as counted by CountUnassigned.
func Summarize(ws []PersonWorkload, unassigned int) TeamSummary {
	s := TeamSummary{
		People:     len(ws),
		ByStatus:   make(map[Tier]int),
		Overloaded: []string{},
		AtRisk:     []string{},
		Idle:       []string{},
		Unassigned: unassigned,
	}
	for _, w := range ws {
		s.ActiveTodos += w.ActiveTodos
		s.CompletedTodos += w.CompletedTodos
		s.OverdueTodos += w.OverdueTodos
		s.Cards += w.Cards
		s.TotalWorkload += w.TotalWorkload
		s.ByStatus[w.Status]++
		switch w.Status {
		case TierOverloaded:
			s.Overloaded = append(s.Overloaded, w.Person.Name)
		case TierNoAssignments:
			s.Idle = append(s.Idle, w.Person.Name)
		}
		if w.RiskLevel == triage.RiskHigh {
			s.AtRisk = append(s.AtRisk, w.Person.Name)
		}
	}
	if s.People > 0 {
		s.AverageWorkload = float64(s.TotalWorkload) / float64(s.People)
	}
	if denom := s.ActiveTodos + s.CompletedTodos; denom > 0 {
		s.CompletionRate = float64(s.CompletedTodos) / float64(denom)
	}
	return s
}

// CountUnassigned counts open todos and cards with no assignee.
func CountUnassigned(items []workitem.Item) int {
	n := 0
	for _, it := range items {
		if it.Kind != workitem.KindScheduleEntry && it.IsActive() && len(it.Assignees) == 0 {
			n++
		}
	}
	return n
}
