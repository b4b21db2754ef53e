package tools

// file: internal/tools/args.go

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/aggregate"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/dock"
	"github.com/dkoosis/camptools/internal/fetch"
	"github.com/dkoosis/camptools/internal/report"
	"github.com/dkoosis/camptools/internal/workitem"
	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// credentialArgs are accepted by every tool that talks to Basecamp.
type credentialArgs struct {
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
}

func (a credentialArgs) credentials() auth.Credentials {
	return auth.Credentials{
		AccessToken: strings.TrimSpace(a.AccessToken),
		AccountID:   strings.TrimSpace(a.AccountID),
	}
}

// scopeArgs select projects and sources. Nil include flags take the
// tool's defaults.
type scopeArgs struct {
	ProjectIDs       []int64  `json:"project_ids"`
	IncludeTodos     *bool    `json:"include_todos"`
	IncludeCards     *bool    `json:"include_cards"`
	IncludeSchedule  *bool    `json:"include_schedule"`
	IncludeCompleted *bool    `json:"include_completed"`
	Required         []string `json:"required_capabilities"`
}

func (a scopeArgs) selection() aggregate.Selection {
	if len(a.ProjectIDs) == 0 {
		return aggregate.Selection{All: true}
	}
	return aggregate.Selection{ProjectIDs: a.ProjectIDs}
}

func (a scopeArgs) include(defaults fetch.Include) (fetch.Include, error) {
	in := defaults
	if a.IncludeTodos != nil {
		in.Todos = *a.IncludeTodos
	}
	if a.IncludeCards != nil {
		in.Cards = *a.IncludeCards
	}
	if a.IncludeSchedule != nil {
		in.Schedule = *a.IncludeSchedule
	}
	if a.IncludeCompleted != nil {
		in.CompletedTodos = *a.IncludeCompleted
	}
	in.CompletedTodos = in.CompletedTodos && in.Todos
	in.Required = nil
	for _, name := range a.Required {
		c, err := dock.ParseCapability(name)
		if err != nil {
			return fetch.Include{}, err
		}
		in.Required = append(in.Required, c)
	}
	if in.Empty() {
		return fetch.Include{}, errors.WithHint(errors.New("nothing to fetch"),
			"Enable at least one of include_todos, include_cards or include_schedule.")
	}
	return in, nil
}

func kinds(names []string) []workitem.Kind {
	out := make([]workitem.Kind, 0, len(names))
	for _, n := range names {
		out = append(out, workitem.Kind(n))
	}
	return out
}

// decodeArgs copies the argument map of req into dst.
func decodeArgs(req mcplib.CallToolRequest, dst any) error {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return errors.Wrap(err, "encoding arguments")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.WithHint(errors.Wrap(err, "invalid arguments"),
			"Identifiers must be whole numbers.")
	}
	return nil
}

// integer narrows a number property to whole numbers.
func integer() mcplib.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

func credentialOptions() []mcplib.ToolOption {
	return []mcplib.ToolOption{
		mcplib.WithString("access_token",
			mcplib.Description("Basecamp OAuth access token. Takes precedence over request headers, environment and keyring."),
		),
		mcplib.WithString("account_id",
			mcplib.Description("Basecamp account id (the number in 3.basecamp.com/<id>)."),
		),
	}
}

func scopeOptions(d fetch.Include) []mcplib.ToolOption {
	caps := make([]string, len(dock.Capabilities))
	for i, c := range dock.Capabilities {
		caps[i] = string(c)
	}
	return []mcplib.ToolOption{
		mcplib.WithArray("project_ids",
			mcplib.Description("Projects to include. Omit for every active project."),
			mcplib.Items(map[string]any{"type": "integer"}),
		),
		mcplib.WithBoolean("include_todos",
			mcplib.Description("Walk todo lists."),
			mcplib.DefaultBool(d.Todos),
		),
		mcplib.WithBoolean("include_cards",
			mcplib.Description("Walk card tables."),
			mcplib.DefaultBool(d.Cards),
		),
		mcplib.WithBoolean("include_schedule",
			mcplib.Description("Walk schedule entries."),
			mcplib.DefaultBool(d.Schedule),
		),
		mcplib.WithBoolean("include_completed",
			mcplib.Description("Also fetch and return completed todos."),
			mcplib.DefaultBool(d.CompletedTodos),
		),
		mcplib.WithArray("required_capabilities",
			mcplib.Description("Capabilities every project must have; projects lacking one get a warning."),
			mcplib.Items(map[string]any{"type": "string", "enum": caps}),
		),
	}
}

func formatOption() mcplib.ToolOption {
	return mcplib.WithString("format",
		mcplib.Description("Output format. Defaults to markdown."),
		mcplib.Enum(string(report.FormatMarkdown), "md", string(report.FormatJSON), string(report.FormatText), string(report.FormatHTML)),
	)
}

func kindsOption() mcplib.ToolOption {
	return mcplib.WithArray("kinds",
		mcplib.Description("Only return these kinds of work item."),
		mcplib.Items(map[string]any{
			"type": "string",
			"enum": []string{string(workitem.KindTodo), string(workitem.KindCard), string(workitem.KindScheduleEntry)},
		}),
	)
}

func userOption(required bool) mcplib.ToolOption {
	opts := []mcplib.PropertyOption{
		mcplib.Description("Person to filter by: numeric id, email address or full name."),
		mcplib.MinLength(1),
	}
	if required {
		opts = append(opts, mcplib.Required())
	}
	return mcplib.WithString("user", opts...)
}

func staleDaysOption() mcplib.ToolOption {
	return mcplib.WithNumber("stale_days",
		mcplib.Description("Days without activity before an item is stale. Defaults to the configured value."),
		integer(),
		mcplib.Min(1),
		mcplib.Max(3650),
	)
}

// toolOptions joins a description with option groups.
func toolOptions(description string, groups ...[]mcplib.ToolOption) []mcplib.ToolOption {
	opts := []mcplib.ToolOption{
		mcplib.WithDescription(description),
		mcplib.WithReadOnlyHintAnnotation(true),
	}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return opts
}
