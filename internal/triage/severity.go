package triage

// file: internal/triage/severity.go

import (
	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/workitem"
)

// Severity is the urgency label of a work item.
type Severity string

// Severities, most urgent first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every label, most urgent first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities: critical is 3, low is 0, unknown is -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0
	}
	return -1
}

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	if sev := Severity(s); sev.Rank() >= 0 {
		return sev, nil
	}
	return "", errors.WithHint(errors.Newf("unknown severity %q", s), "Use one of critical, high, medium, low.")
}

// Thresholds of the severity rules, in days.
const (
	criticalOverdueDays = 7
	imminentDays        = 1
	soonDays            = 7
	agingDays           = 14
)

// Classify labels item. The rules are a priority chain and the first match
// wins:
//
//	critical  overdue by more than 7 days
//	high      overdue, due within 1 day, or open and created over 14 days ago
//	medium    due within 7 days
//	low       everything else
func Classify(item workitem.Item, clock Clock) Severity {
	today := clock.Today()

	if item.HasDue() && item.DueOn.Before(today) {
		if today.DaysSince(*item.DueOn) > criticalOverdueDays {
			return SeverityCritical
		}
		return SeverityHigh
	}

	daysUntilDue := -1
	if item.HasDue() {
		daysUntilDue = item.DueOn.DaysSince(today)
	}
	if daysUntilDue >= 0 && daysUntilDue <= imminentDays {
		return SeverityHigh
	}
	if item.IsActive() && !item.CreatedAt.IsZero() && today.DaysSince(clock.DateOf(item.CreatedAt)) > agingDays {
		return SeverityHigh
	}
	if daysUntilDue >= 0 && daysUntilDue <= soonDays {
		return SeverityMedium
	}
	return SeverityLow
}

// DaysOverdue returns how many days past due item is, or 0.
func DaysOverdue(item workitem.Item, clock Clock) int {
	if !item.HasDue() {
		return 0
	}
	if d := clock.Today().DaysSince(*item.DueOn); d > 0 {
		return d
	}
	return 0
}
