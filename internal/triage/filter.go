package triage

// file: internal/triage/filter.go

import (
	"slices"

	"github.com/dkoosis/camptools/internal/workitem"
)

// Criteria narrows a list of items. Zero values match everything, except
// that completed items are dropped unless IncludeCompleted is set.
type Criteria struct {
	AssigneeID       int64           `json:"assignee_id,omitempty"`
	Kinds            []workitem.Kind `json:"kinds,omitempty"`
	ProjectIDs       []int64         `json:"project_ids,omitempty"`
	Bucket           Bucket          `json:"due,omitempty"`
	IncludeCompleted bool            `json:"include_completed,omitempty"`
	StaleOnly        bool            `json:"stale_only,omitempty"`
	StaleDays        int             `json:"stale_days,omitempty"`
	MinSeverity      Severity        `json:"min_severity,omitempty"`
}

// Matches reports whether item satisfies every criterion.
func (c Criteria) Matches(item workitem.Item, clock Clock) bool {
	if !item.IsActive() && !c.IncludeCompleted {
		return false
	}
	if c.AssigneeID != 0 && !item.AssignedTo(c.AssigneeID) {
		return false
	}
	if len(c.Kinds) > 0 && !slices.Contains(c.Kinds, item.Kind) {
		return false
	}
	if len(c.ProjectIDs) > 0 && !slices.Contains(c.ProjectIDs, item.ProjectID) {
		return false
	}
	if c.Bucket != "" && !InBucket(item, c.Bucket, clock) {
		return false
	}
	if c.StaleOnly && !IsStale(item, clock, c.StaleDays) {
		return false
	}
	if c.MinSeverity != "" && Classify(item, clock).Rank() < c.MinSeverity.Rank() {
		return false
	}
	return true
}

// Apply returns the items matching c, in input order.
func Apply(items []workitem.Item, c Criteria, clock Clock) []workitem.Item {
	out := make([]workitem.Item, 0, len(items))
	for _, it := range items {
		if c.Matches(it, clock) {
			out = append(out, it)
		}
	}
	return out
}

// Describe lists the criteria that are set, for reporting back to callers.
func (c Criteria) Describe() map[string]any {
	d := map[string]any{"include_completed": c.IncludeCompleted}
	if c.AssigneeID != 0 {
		d["assignee_id"] = c.AssigneeID
	}
	if len(c.Kinds) > 0 {
		d["kinds"] = c.Kinds
	}
	if len(c.ProjectIDs) > 0 {
		d["project_ids"] = c.ProjectIDs
	}
	if c.Bucket != "" {
		d["due"] = c.Bucket
	}
	if c.StaleOnly {
		days := c.StaleDays
		if days <= 0 {
			days = DefaultStaleDays
		}
		d["stale_days"] = days
	}
	if c.MinSeverity != "" {
		d["min_severity"] = c.MinSeverity
	}
	return d
}

// Classified pairs an item with its derived labels.
type Classified struct {
	workitem.Item
	Severity          Severity `json:"severity"`
	Bucket            Bucket   `json:"timeline_bucket"`
	DaysOverdue       int      `json:"days_overdue,omitempty"`
	DaysSinceActivity int      `json:"days_since_activity"`
}

// Annotate labels each item. Labels are computed on every call.
func Annotate(items []workitem.Item, clock Clock) []Classified {
	out := make([]Classified, len(items))
	for i, it := range items {
		out[i] = Classified{
			Item:              it,
			Severity:          Classify(it, clock),
			Bucket:            TimelineBucket(it, clock),
			DaysOverdue:       DaysOverdue(it, clock),
			DaysSinceActivity: DaysSinceActivity(it, clock),
		}
	}
	return out
}

// SortBySeverity orders classified items most urgent first, then most
// overdue, then by title.
func SortBySeverity(items []Classified) {
	slices.SortStableFunc(items, func(a, b Classified) int {
		if d := b.Severity.Rank() - a.Severity.Rank(); d != 0 {
			return d
		}
		if d := b.DaysOverdue - a.DaysOverdue; d != 0 {
			return d
		}
		switch {
		case a.Title < b.Title:
			return -1
		case a.Title > b.Title:
			return 1
		}
		return 0
	})
}
