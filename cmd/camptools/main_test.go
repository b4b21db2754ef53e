package main

// file: cmd/camptools/main_test.go

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/basecamp"
	"github.com/dkoosis/camptools/internal/basecamp/basecamptest"
	"github.com/dkoosis/camptools/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestRunCommands(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"version"}, nil, &out, &errOut))
	assert.Contains(t, out.String(), "camptools ")

	err := run([]string{"frobnicate"}, nil, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, errOut.String(), "Usage:")

	require.Error(t, run(nil, nil, &out, &errOut))
}

func TestReportArguments(t *testing.T) {
	parse := func(args ...string) map[string]any {
		fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
		var r reportFlags
		r.register(fs)
		require.NoError(t, fs.Parse(args))
		m, err := r.arguments(fs)
		require.NoError(t, err)
		return m
	}

	m := parse("-p", "1,2", "--user", "ada@example.com", "--stale-days", "10")
	assert.Equal(t, []int64{1, 2}, m["project_ids"])
	assert.Equal(t, "ada@example.com", m["user"])
	assert.Equal(t, 10, m["stale_days"])
	assert.NotContains(t, m, "format", "unset flags leave tool defaults alone")
	assert.NotContains(t, m, "include_completed")

	m = parse("--tool", "resolve_capability", "-p", "7", "--capability", "chat")
	assert.Equal(t, int64(7), m["project_id"])
	assert.NotContains(t, m, "project_ids")

	m = parse("--format", "json", "--args", `{"format":"text","limit":3}`)
	assert.Equal(t, "text", m["format"], "--args wins over flags")
	assert.Equal(t, float64(3), m["limit"])

	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	var r reportFlags
	r.register(fs)
	require.NoError(t, fs.Parse([]string{"--args", "[1]"}))
	_, err := r.arguments(fs)
	require.Error(t, err)
}

func TestRegisterDesktopKeepsOtherServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Claude", "claude_desktop_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark","mcpServers":{"other":{"command":"other"}}}`), 0o600))

	entry := desktopServer{Command: "/usr/local/bin/camptools", Args: []string{"serve"}}
	require.NoError(t, registerDesktop(path, "camptools", entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Theme      string                   `json:"theme"`
		MCPServers map[string]desktopServer `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "dark", doc.Theme)
	assert.Equal(t, "other", doc.MCPServers["other"].Command)
	assert.Equal(t, entry, doc.MCPServers["camptools"])
}

func TestRegisterDesktopLeavesBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	err := registerDesktop(path, "camptools", desktopServer{Command: "x"})
	require.Error(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "{not json", string(data))
}

func TestWriteDefaultConfigLoads(t *testing.T) {
	t.Setenv("BASECAMP_ACCOUNT_ID", "")
	path := filepath.Join(t.TempDir(), "camptools", "camptools.yaml")
	created, err := writeDefaultConfig(path, "4242")
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4242", cfg.Basecamp.AccountID)
	assert.Equal(t, "stdio", cfg.Server.Transport)

	created, err = writeDefaultConfig(path, "other")
	require.NoError(t, err)
	assert.False(t, created, "an existing file is kept")
}

func TestTokenCommand(t *testing.T) {
	keyring.MockInit()
	store := auth.NewKeyringStore(nil)
	var out bytes.Buffer

	require.NoError(t, tokenCommand([]string{"set", "--account-id", "999"}, strings.NewReader("secret-token-abcd\n"), &out, store))
	assert.Contains(t, out.String(), "saved")

	rec, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "secret-token-abcd", rec.AccessToken)
	assert.Equal(t, "999", rec.AccountID)

	out.Reset()
	require.NoError(t, tokenCommand([]string{"status"}, nil, &out, store))
	assert.Contains(t, out.String(), "********abcd")
	assert.NotContains(t, out.String(), "secret-token")

	out.Reset()
	require.NoError(t, tokenCommand([]string{"diagnose"}, nil, &out, store))
	assert.Contains(t, out.String(), "Keyring reachable: true")
	assert.Contains(t, out.String(), "Usable:            true")

	require.NoError(t, tokenCommand([]string{"clear"}, nil, &out, store))
	rec, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	err = tokenCommand([]string{"set", "--access-token", "tok"}, nil, &out, store)
	require.Error(t, err, "account id is required")
	require.Error(t, tokenCommand(nil, nil, &out, store))
	require.Error(t, tokenCommand([]string{"rotate"}, nil, &out, store))
}

func TestReportCommand(t *testing.T) {
	keyring.MockInit()
	srv := basecamptest.NewServer(t)
	srv.JSON("projects/1.json", basecamp.Project{ID: 1, Name: "Alpha", Dock: []basecamp.DockEntry{
		{ID: 10, Name: "todoset", Enabled: true},
	}})

	dir := t.TempDir()
	path := filepath.Join(dir, "camptools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("basecamp:\n  base_url: "+srv.URL+"\n"), 0o600))
	t.Setenv("BASECAMP_BASE_URL", "")
	t.Setenv("BASECAMP_ACCESS_TOKEN", basecamptest.Token)
	t.Setenv("BASECAMP_ACCOUNT_ID", basecamptest.AccountID)

	var out, errOut bytes.Buffer
	err := run([]string{"report", "--config", path, "--log-level", "error",
		"--tool", "resolve_capability", "-p", "1", "--capability", "todos"}, nil, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"capability_id": 10`)

	err = run([]string{"report", "--config", path, "--log-level", "error",
		"--tool", "resolve_capability", "-p", "1", "--capability", "chat"}, nil, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve_capability:")

	report := filepath.Join(dir, "report.md")
	err = run([]string{"report", "--config", path, "--log-level", "error",
		"--tool", "server_status", "-o", report}, nil, &out, &errOut)
	require.NoError(t, err)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"available": true`)
}
