// Package report renders aggregation results as JSON, markdown, plain text
// or HTML.
package report

// file: internal/report/report.go

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/triage"
	"github.com/dkoosis/camptools/internal/workitem"
	"github.com/dkoosis/camptools/internal/workload"
)

// Format is an output format.
type Format string

// Formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name. Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", "md":
		return FormatMarkdown, nil
	case FormatJSON, FormatMarkdown, FormatText, FormatHTML:
		return f, nil
	}
	return "", errors.WithHint(errors.Newf("unknown format %q", s), "Use json, markdown, text or html.")
}

// Problem is an error or warning carried into a report.
type Problem struct {
	Severity    string `json:"severity"` // "error" or "warning"
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name,omitempty"`
	Message     string `json:"message"`
}

// Report is everything a rendering may show. Sections left empty are
// omitted.
type Report struct {
	Title       string                    `json:"title"`
	GeneratedAt time.Time                 `json:"generated_at"`
	RunID       string                    `json:"run_id,omitempty"`
	Projects    int                       `json:"projects"`
	Filters     map[string]any            `json:"filters_applied,omitempty"`
	Items       []triage.Classified       `json:"items"`
	Timeline    []triage.TimelineGroup    `json:"timeline,omitempty"`
	Workloads   []workload.PersonWorkload `json:"workloads,omitempty"`
	Team        *workload.TeamSummary     `json:"team,omitempty"`
	Risks       []triage.ProjectRisk      `json:"project_risk,omitempty"`
	Problems    []Problem                 `json:"problems"`
}

// FromResult starts a report over items, which are usually a filtered
// subset of res.Items. Items are labeled and sorted most urgent first.
func FromResult(title string, res aggregate.Result, items []workitem.Item, clock triage.Clock) Report {
	classified := triage.Annotate(items, clock)
	triage.SortBySeverity(classified)
	return Report{
		Title:       title,
		GeneratedAt: clock.Now,
		RunID:       res.RunID,
		Projects:    len(res.Projects),
		Filters:     res.FiltersApplied,
		Items:       classified,
		Timeline:    triage.Timeline(items, clock),
		Problems:    Problems(res),
	}
}

// Problems flattens the errors and warnings of res.
func Problems(res aggregate.Result) []Problem {
	out := make([]Problem, 0, len(res.Errors)+len(res.Warnings))
	for _, e := range res.Errors {
		out = append(out, Problem{Severity: "error", ProjectID: e.ProjectID, ProjectName: e.ProjectName, Message: e.Message})
	}
	for _, w := range res.Warnings {
		out = append(out, Problem{
			Severity:    "warning",
			ProjectID:   w.ProjectID,
			ProjectName: w.ProjectName,
			Message:     w.Resource + ": " + w.Message,
		})
	}
	return out
}

// Render formats r.
func Render(r Report, f Format) (string, error) {
	switch f {
	case FormatJSON:
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, "encoding report")
		}
		return string(b), nil
	case FormatMarkdown, "":
		return Markdown(r), nil
	case FormatText:
		return Text(r), nil
	case FormatHTML:
		return HTML(r)
	}
	return "", errors.Newf("unknown format %q", f)
}
