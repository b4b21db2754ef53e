package triage

// file: internal/triage/risk.go

import (
	"sort"

	"github.com/dkoosis/camptools/internal/workitem"
)

// Risk levels shared by projects and people.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
	RiskNone   = "none"
)

// ProjectRisk summarizes the open items of one project.
type ProjectRisk struct {
	ProjectID   int64            `json:"project_id"`
	ProjectName string           `json:"project_name"`
	Open        int              `json:"open"`
	Overdue     int              `json:"overdue"`
	Stale       int              `json:"stale"`
	Unassigned  int              `json:"unassigned"`
	BySeverity  map[Severity]int `json:"by_severity"`
	Level       string           `json:"risk_level"`
	Top         []Classified     `json:"top_items,omitempty"`
}

// maxTopItems bounds ProjectRisk.Top.
const maxTopItems = 5

// AssessProjects groups open items by project and rates each. Projects are
// returned most at risk first.
func AssessProjects(items []workitem.Item, clock Clock, staleDays int) []ProjectRisk {
	index := make(map[int64]int)
	var out []ProjectRisk
	var top [][]Classified
	for _, c := range Annotate(items, clock) {
		if !c.IsActive() {
			continue
		}
		i, ok := index[c.ProjectID]
		if !ok {
			i = len(out)
			index[c.ProjectID] = i
			out = append(out, ProjectRisk{
				ProjectID:   c.ProjectID,
				ProjectName: c.ProjectName,
				BySeverity:  map[Severity]int{},
			})
			top = append(top, nil)
		}
		r := &out[i]
		r.Open++
		r.BySeverity[c.Severity]++
		if c.DaysOverdue > 0 {
			r.Overdue++
		}
		if IsStale(c.Item, clock, staleDays) {
			r.Stale++
		}
		if len(c.Assignees) == 0 {
			r.Unassigned++
		}
		top[i] = append(top[i], c)
	}
	for i := range out {
		out[i].Level = projectLevel(out[i])
		SortBySeverity(top[i])
		if len(top[i]) > maxTopItems {
			top[i] = top[i][:maxTopItems]
		}
		out[i].Top = top[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if a, b := levelRank(out[i].Level), levelRank(out[j].Level); a != b {
			return a > b
		}
		return out[i].Overdue > out[j].Overdue
	})
	return out
}

func projectLevel(r ProjectRisk) string {
	switch {
	case r.BySeverity[SeverityCritical] > 0 || r.Overdue > 5:
		return RiskHigh
	case r.BySeverity[SeverityHigh] > 0:
		return RiskMedium
	case r.Open > 0:
		return RiskLow
	}
	return RiskNone
}

func levelRank(level string) int {
	switch level {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	}
	return 0
}
