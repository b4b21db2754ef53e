package triage

// file: internal/triage/stale.go

import (
	"time"

	"github.com/dkoosis/camptools/internal/workitem"
)

// DefaultStaleDays is the staleness threshold when none is given.
const DefaultStaleDays = 7

// IsStale reports whether the item's last activity is older than days.
// Items with no timestamps at all are never stale.
func IsStale(item workitem.Item, clock Clock, days int) bool {
	if days <= 0 {
		days = DefaultStaleDays
	}
	last := item.LastActivity()
	if last.IsZero() {
		return false
	}
	return last.Before(clock.Now.Add(-time.Duration(days) * 24 * time.Hour))
}

// DaysSinceActivity returns the whole days between the item's last
// activity and now, or -1 when unknown.
func DaysSinceActivity(item workitem.Item, clock Clock) int {
	last := item.LastActivity()
	if last.IsZero() {
		return -1
	}
	return int(clock.Now.Sub(last).Hours() / 24)
}
