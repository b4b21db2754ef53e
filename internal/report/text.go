package report

// file: internal/report/text.go

import (
	"fmt"
	"strings"

	"github.com/dkoosis/camptools/internal/triage"
)

// Text renders a short plain-text summary.
func Text(r Report) string {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString(r.Title + "\n")
	}
	fmt.Fprintf(&b, "%s across %s.", plural(len(r.Items), "item"), plural(r.Projects, "project"))

	buckets := make(map[triage.Bucket]int)
	for _, g := range r.Timeline {
		buckets[g.Bucket] = len(g.Items)
	}
	var parts []string
	for _, bucket := range []triage.Bucket{triage.BucketOverdue, triage.BucketToday, triage.BucketThisWeek} {
		if n := buckets[bucket]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(bucketTitles[bucket])))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " %s.", strings.Join(parts, ", "))
	}

	counts := severityCounts(r.Items)
	if n := counts[triage.SeverityCritical]; n > 0 {
		fmt.Fprintf(&b, " %d critical.", n)
	}
	if r.Team != nil {
		fmt.Fprintf(&b, " Team of %d carries %d open items", r.Team.People, r.Team.TotalWorkload)
		if len(r.Team.Overloaded) > 0 {
			fmt.Fprintf(&b, "; overloaded: %s", strings.Join(r.Team.Overloaded, ", "))
		}
		b.WriteString(".")
	}

	errs, warns := 0, 0
	for _, p := range r.Problems {
		if p.Severity == "error" {
			errs++
		} else {
			warns++
		}
	}
	if errs+warns > 0 {
		fmt.Fprintf(&b, " %s, %s.", plural(errs, "error"), plural(warns, "warning"))
	}
	return b.String() + "\n"
}
