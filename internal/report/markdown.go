package report

// file: internal/report/markdown.go

import (
	"fmt"
	"strings"

	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
	"github.com/dustin/go-humanize"
)

var bucketTitles = map[triage.Bucket]string{
	triage.BucketOverdue:   "Overdue",
	triage.BucketToday:     "Due today",
	triage.BucketThisWeek:  "Later this week",
	triage.BucketNextWeek:  "Next week",
	triage.BucketLater:     "Later",
	triage.BucketNoDueDate: "No due date",
}

// Markdown renders r as a markdown document.
func Markdown(r Report) string {
	var b strings.Builder
	title := r.Title
	if title == "" {
		title = "Work report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s. %s across %s._\n\n",
		r.GeneratedAt.Format("Mon Jan 2 2006 15:04 MST"),
		plural(len(r.Items), "item"), plural(r.Projects, "project"))

	if len(r.Items) > 0 {
		b.WriteString("## Summary\n\n")
		counts := severityCounts(r.Items)
		for _, s := range triage.Severities {
			if counts[s] > 0 {
				fmt.Fprintf(&b, "- **%s**: %d\n", s, counts[s])
			}
		}
		b.WriteString("\n")
	}

	if len(r.Timeline) > 0 {
		b.WriteString("## Timeline\n\n")
		labels := labelIndex(r.Items)
		for _, g := range r.Timeline {
			fmt.Fprintf(&b, "### %s (%d)\n\n", bucketTitles[g.Bucket], len(g.Items))
			b.WriteString("| Severity | Title | Project | Due | Assignees | Last activity |\n")
			b.WriteString("|---|---|---|---|---|---|\n")
			for _, it := range g.Items {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
					labels[key(it)], link(it), cell(it.ProjectName), due(it),
					cell(assignees(it.Assignees)), r.activity(it))
			}
			b.WriteString("\n")
		}
	}

	if r.Team != nil {
		b.WriteString("## Team\n\n")
		fmt.Fprintf(&b, "- People: %d\n- Open workload: %d (average %.1f)\n- Overdue todos: %d\n- Completion rate: %.0f%%\n- Unassigned items: %d\n",
			r.Team.People, r.Team.TotalWorkload, r.Team.AverageWorkload, r.Team.OverdueTodos,
			r.Team.CompletionRate*100, r.Team.Unassigned)
		if len(r.Team.Overloaded) > 0 {
			fmt.Fprintf(&b, "- Overloaded: %s\n", strings.Join(r.Team.Overloaded, ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Workloads) > 0 {
		b.WriteString("## Workload\n\n")
		b.WriteString("| Person | Status | Active | Overdue | Cards | Completion | Risk |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
		for _, w := range r.Workloads {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %.0f%% | %s |\n",
				cell(w.Person.Name), w.Status, w.ActiveTodos, w.OverdueTodos, w.Cards,
				w.CompletionRate*100, w.RiskLevel)
		}
		b.WriteString("\n")
	}

	if len(r.Risks) > 0 {
		b.WriteString("## Project risk\n\n")
		b.WriteString("| Project | Risk | Open | Overdue | Stale | Unassigned |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|\n")
		for _, p := range r.Risks {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d |\n",
				cell(p.ProjectName), p.Level, p.Open, p.Overdue, p.Stale, p.Unassigned)
		}
		b.WriteString("\n")
	}

	if len(r.Problems) > 0 {
		b.WriteString("## Problems\n\n")
		for _, p := range r.Problems {
			fmt.Fprintf(&b, "- %s (project %d): %s\n", p.Severity, p.ProjectID, p.Message)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (r Report) activity(it workitem.Item) string {
	last := it.LastActivity()
	if last.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(last, r.GeneratedAt, "ago", "from now")
}

type itemKey struct {
	kind workitem.Kind
	id   int64
}

func key(it workitem.Item) itemKey { return itemKey{it.Kind, it.ID} }

func labelIndex(items []triage.Classified) map[itemKey]triage.Severity {
	m := make(map[itemKey]triage.Severity, len(items))
	for _, c := range items {
		m[key(c.Item)] = c.Severity
	}
	return m
}

func severityCounts(items []triage.Classified) map[triage.Severity]int {
	m := make(map[triage.Severity]int)
	for _, c := range items {
		m[c.Severity]++
	}
	return m
}

func link(it workitem.Item) string {
	if it.URL == "" {
		return cell(it.Title)
	}
	return fmt.Sprintf("[%s](%s)", cell(it.Title), it.URL)
}

func due(it workitem.Item) string {
	if !it.HasDue() {
		return "-"
	}
	return it.DueOn.String()
}

func assignees(people []workitem.Person) string {
	if len(people) == 0 {
		return "unassigned"
	}
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
