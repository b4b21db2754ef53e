package main

// file: cmd/camptools/setup.go

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/config"
	"github.com/spf13/pflag"
)

// desktopServer is one entry under "mcpServers" in Claude Desktop's
// configuration file.
type desktopServer struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

const defaultConfigYAML = `server:
  name: camptools
  transport: stdio
  addr: 127.0.0.1:8484

basecamp:
  # The number after 3.basecamp.com/ in your browser.
  account_id: "%s"
  base_url: https://3.basecampapi.com
  # Tokens are best kept out of this file: run 'camptools token set' to
  # store one in the OS keyring, or set BASECAMP_ACCESS_TOKEN.
  # client_id and client_secret enable token refresh.

api:
  request_timeout: 20s
  rate_per_second: 5
  burst: 10
  max_conns_per_host: 8
  max_wait: 30s

concurrency:
  projects: 4
  per_project: 4

analysis:
  stale_days: 7
  # timezone: Europe/Berlin

logging:
  level: info
  format: json
`

func runSetup(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", config.DefaultPath(), "Where to write the configuration file.")
	accountID := flags.String("account-id", "", "Basecamp account id to put in the new configuration.")
	name := flags.String("name", "camptools", "Server name in Claude Desktop.")
	desktopPath := flags.String("desktop-config", desktopConfigPath(), "Claude Desktop configuration file.")
	printOnly := flags.Bool("print", false, "Print the Claude Desktop entry instead of writing it.")
	if err := flags.Parse(args); err != nil {
		return err
	}

	exePath, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to get executable path")
	}
	if exePath, err = filepath.Abs(exePath); err != nil {
		return errors.Wrap(err, "failed to get absolute executable path")
	}

	created, err := writeDefaultConfig(*configPath, *accountID)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(stdout, "Created configuration at %s\n", *configPath)
	} else {
		fmt.Fprintf(stdout, "Configuration already exists at %s\n", *configPath)
	}

	entry := desktopServer{
		Command: exePath,
		Args:    []string{"serve", "--transport", "stdio", "--config", *configPath},
	}
	if *printOnly {
		data, err := json.MarshalIndent(map[string]any{"mcpServers": map[string]desktopServer{*name: entry}}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding Claude Desktop entry")
		}
		fmt.Fprintf(stdout, "Add this to %s:\n%s\n", *desktopPath, data)
		return nil
	}

	if err := registerDesktop(*desktopPath, *name, entry); err != nil {
		return errors.WithHintf(err, "Run 'camptools setup --print' and add the entry to %s by hand.", *desktopPath)
	}
	fmt.Fprintf(stdout, "Registered %q in %s\n", *name, *desktopPath)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintln(stdout, "1. Run 'camptools token set --account-id <id>' to store your access token")
	fmt.Fprintln(stdout, "2. Restart Claude Desktop")
	fmt.Fprintln(stdout, "3. Ask \"What is overdue across my Basecamp projects?\"")
	return nil
}

// writeDefaultConfig creates path unless it already exists.
func writeDefaultConfig(path, accountID string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, errors.Wrap(err, "failed to create configuration directory")
	}
	body := fmt.Sprintf(defaultConfigYAML, accountID)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return false, errors.Wrap(err, "failed to write default configuration file")
	}
	return true, nil
}

// registerDesktop adds or replaces the named server in Claude Desktop's
// configuration, keeping every other key. A file that is not valid JSON is
// left untouched.
func registerDesktop(path, name string, entry desktopServer) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return errors.Wrap(err, "failed to read Claude Desktop configuration")
	}

	servers, _ := doc["mcpServers"].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	servers[name] = entry
	doc["mcpServers"] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal Claude Desktop configuration")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create Claude Desktop configuration directory")
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.Wrap(err, "failed to write Claude Desktop configuration")
	}
	return nil
}

// desktopConfigPath returns the location of Claude Desktop's configuration
// file for this OS.
func desktopConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(homeDir, "Library", "Application Support", "Claude")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "Claude")
	default:
		dir = filepath.Join(homeDir, ".config", "Claude")
	}
	return filepath.Join(dir, "claude_desktop_config.json")
}
