// Package triage classifies work items: who they belong to, when they are
// due, whether they have gone stale and how urgent they are. Every label is
// a pure function of the item and a Clock.
package triage

// file: internal/triage/clock.go

import (
	"time"

	"github.com/dkoosis/camptools/internal/workitem"
)

// Clock pins "now" and the zone calendar dates are read in.
type Clock struct {
	Now      time.Time
	Location *time.Location
}

// NewClock returns a clock at now in loc. A nil loc means UTC.
func NewClock(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: now, Location: loc}
}

// Today is the current calendar date.
func (c Clock) Today() workitem.Date {
	return workitem.Today(c.Now, c.loc())
}

// DateOf returns the calendar date of t in the clock's zone.
func (c Clock) DateOf(t time.Time) workitem.Date {
	return workitem.DateOf(t.In(c.loc()))
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
