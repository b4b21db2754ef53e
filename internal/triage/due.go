package triage

// file: internal/triage/due.go

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/workitem"
)

// Bucket is a due-date window.
type Bucket string

// Buckets. Overdue, Today, ThisWeek and NextWeek are filters and may
// overlap; Later and NoDueDate only appear in a Timeline.
const (
	BucketOverdue   Bucket = "overdue"
	BucketToday     Bucket = "today"
	BucketThisWeek  Bucket = "this_week"
	BucketNextWeek  Bucket = "next_week"
	BucketLater     Bucket = "later"
	BucketNoDueDate Bucket = "no_due_date"
)

// TimelineOrder is the order Timeline groups are returned in.
var TimelineOrder = []Bucket{BucketOverdue, BucketToday, BucketThisWeek, BucketNextWeek, BucketLater, BucketNoDueDate}

// ParseBucket validates a filter bucket name.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketOverdue, BucketToday, BucketThisWeek, BucketNextWeek:
		return b, nil
	}
	return "", errors.WithHint(errors.Newf("unknown due bucket %q", s),
		"Use one of overdue, today, this_week, next_week.")
}

// WeekStart returns the Sunday that starts the week containing d.
func WeekStart(d workitem.Date) workitem.Date {
	return d.AddDays(-int(d.Weekday() - time.Sunday))
}

// InBucket reports whether item falls in bucket. Items without a due date
// match no bucket. The week buckets are the Sunday-anchored 7-day window
// containing today and the window after it.
func InBucket(item workitem.Item, bucket Bucket, clock Clock) bool {
	if !item.HasDue() {
		return false
	}
	due := *item.DueOn
	today := clock.Today()
	start := WeekStart(today)
	switch bucket {
	case BucketOverdue:
		return due.Before(today)
	case BucketToday:
		return due == today
	case BucketThisWeek:
		return within(due, start, start.AddDays(6))
	case BucketNextWeek:
		return within(due, start.AddDays(7), start.AddDays(13))
	}
	return false
}

func within(d, from, to workitem.Date) bool {
	return !d.Before(from) && !d.After(to)
}

// TimelineBucket assigns item to exactly one bucket. This week here means
// the rest of the current week after today.
func TimelineBucket(item workitem.Item, clock Clock) Bucket {
	if !item.HasDue() {
		return BucketNoDueDate
	}
	due := *item.DueOn
	today := clock.Today()
	end := WeekStart(today).AddDays(6)
	switch {
	case due.Before(today):
		return BucketOverdue
	case due == today:
		return BucketToday
	case !due.After(end):
		return BucketThisWeek
	case !due.After(end.AddDays(7)):
		return BucketNextWeek
	default:
		return BucketLater
	}
}

// TimelineGroup is one bucket of a timeline.
type TimelineGroup struct {
	Bucket Bucket          `json:"bucket"`
	Items  []workitem.Item `json:"items"`
}

// Timeline groups items into exclusive buckets in TimelineOrder, skipping
// empty ones. Items within a group are ordered by due date, then title.
func Timeline(items []workitem.Item, clock Clock) []TimelineGroup {
	grouped := make(map[Bucket][]workitem.Item)
	for _, it := range items {
		b := TimelineBucket(it, clock)
		grouped[b] = append(grouped[b], it)
	}
	out := make([]TimelineGroup, 0, len(grouped))
	for _, b := range TimelineOrder {
		group := grouped[b]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			a, c := group[i], group[j]
			if a.DueOn != nil && c.DueOn != nil && *a.DueOn != *c.DueOn {
				return a.DueOn.Before(*c.DueOn)
			}
			return a.Title < c.Title
		})
		out = append(out, TimelineGroup{Bucket: b, Items: group})
	}
	return out
}
