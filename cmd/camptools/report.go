package main

// file: cmd/camptools/report.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/tools"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/pflag"
)

// reportFlags maps command-line flags onto tool arguments. Only flags the
// user set are passed, so each tool keeps its own defaults.
type reportFlags struct {
	tool       string
	projects   []int64
	kinds      []string
	required   []string
	user       string
	due        string
	query      string
	capability string
	severity   string
	sort       string
	format     string
	staleDays  int
	limit      int
	completed  bool
	raw        string
}

func (r *reportFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&r.tool, "tool", "aggregate_work", "Tool to run.")
	fs.Int64SliceVarP(&r.projects, "project", "p", nil, "Project id; repeat or comma-separate for several. Default: every active project.")
	fs.StringSliceVar(&r.kinds, "kind", nil, "Only these kinds: todo, card, schedule_entry.")
	fs.StringSliceVar(&r.required, "require", nil, "Capabilities every project must have.")
	fs.StringVarP(&r.user, "user", "u", "", "Person by id, email or name.")
	fs.StringVar(&r.due, "due", "", "Due window for get_due_items: overdue, today, this_week, next_week.")
	fs.StringVarP(&r.query, "query", "q", "", "Search text for search_work_items, or the person for find_person.")
	fs.StringVar(&r.capability, "capability", "", "Capability for resolve_capability.")
	fs.StringVar(&r.severity, "min-severity", "", "Minimum severity for get_overdue_items.")
	fs.StringVar(&r.sort, "sort", "", "Workload order: workload, overdue or name.")
	fs.StringVarP(&r.format, "format", "f", "", "Output format: markdown, json, text or html.")
	fs.IntVar(&r.staleDays, "stale-days", 0, "Days without activity before an item is stale.")
	fs.IntVar(&r.limit, "limit", 0, "Maximum search results.")
	fs.BoolVar(&r.completed, "include-completed", false, "Also fetch completed todos.")
	fs.StringVar(&r.raw, "args", "", "Tool arguments as a JSON object, applied over the flags.")
}

func (r *reportFlags) arguments(fs *pflag.FlagSet) (map[string]any, error) {
	args := map[string]any{}
	set := func(flag, key string, v any) {
		if fs.Changed(flag) {
			args[key] = v
		}
	}
	if r.tool == "resolve_capability" && len(r.projects) == 1 {
		args["project_id"] = r.projects[0]
	} else {
		set("project", "project_ids", r.projects)
	}
	set("kind", "kinds", r.kinds)
	set("require", "required_capabilities", r.required)
	set("user", "user", r.user)
	set("due", "due", r.due)
	set("capability", "capability", r.capability)
	set("min-severity", "min_severity", r.severity)
	set("sort", "sort", r.sort)
	set("format", "format", r.format)
	set("stale-days", "stale_days", r.staleDays)
	set("limit", "limit", r.limit)
	set("include-completed", "include_completed", r.completed)
	set("query", "query", r.query)

	if r.raw != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(r.raw), &extra); err != nil {
			return nil, errors.WithHint(errors.Wrap(err, "parsing --args"), `Pass a JSON object, e.g. --args '{"project_ids":[1,2]}'.`)
		}
		for k, v := range extra {
			args[k] = v
		}
	}
	return args, nil
}

func runReport(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	var common commonFlags
	var flags reportFlags
	common.register(fs)
	flags.register(fs)
	output := fs.StringP("output", "o", "", "Write the report to this file instead of stdout.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	callArgs, err := flags.arguments(fs)
	if err != nil {
		return err
	}

	logger := logging.GetLogger("report")
	svc, err := tools.NewService(tools.Env{
		Config: cfg,
		Store:  auth.NewKeyringStore(logger),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := svc.CallTool(ctx, flags.tool, callArgs)
	if err != nil {
		return err
	}
	text := resultText(res)
	if res.IsError {
		return errors.Newf("%s: %s", flags.tool, strings.TrimSpace(text))
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", *output)
		}
		logger.Info("Report written.", "path", *output, "bytes", len(text))
		return nil
	}
	_, err = fmt.Fprint(stdout, text)
	return err
}

func resultText(res *mcplib.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	out := strings.Join(parts, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
