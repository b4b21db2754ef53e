// Command camptools serves Basecamp capability resolution and cross-project
// work reports as MCP tools, and runs the same reports from the shell.
package main

// file: cmd/camptools/main.go

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/config"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/tools"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Set during build via ldflags.
var (
	commitHash = "unknown"
	buildDate  = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "camptools: %v\n", err)
		for _, h := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", h)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}
	var err error
	switch args[0] {
	case "serve":
		err = runServe(args[1:])
	case "report":
		err = runReport(args[1:], stdout)
	case "token":
		err = runToken(args[1:], stdin, stdout)
	case "setup":
		err = runSetup(args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "camptools %s (commit %s, built %s)\n", tools.Version, commitHash, buildDate)
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		printUsage(stderr)
		return errors.Newf("unknown command %q", args[0])
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  camptools serve [options]             Serve the MCP tools over stdio or http")
	fmt.Fprintln(w, "  camptools report [options]            Run one tool and print its report")
	fmt.Fprintln(w, "  camptools token set|clear|status|diagnose  Manage the access token in the OS keyring")
	fmt.Fprintln(w, "  camptools setup [options]             Write a default config and register with Claude Desktop")
	fmt.Fprintln(w, "  camptools version                     Print version information")
	fmt.Fprintln(w, "\nRun 'camptools <command> --help' for the options of a command.")
}

// commonFlags are shared by every command that loads configuration.
type commonFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.configPath, "config", "c", "", "Path to the YAML configuration file (default "+config.DefaultPath()+" when present).")
	fs.StringVar(&c.envFile, "env-file", "", "Load environment variables from this file (default .env when present).")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error. Overrides the config.")
	fs.StringVar(&c.logFormat, "log-format", "", "Log format: json or text. Overrides the config.")
}

// load reads the env file, then the configuration, and installs the
// default logger. Variables already set in the environment win over the
// env file.
func (c *commonFlags) load() (*config.Config, error) {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			return nil, errors.Wrapf(err, "loading env file %s", c.envFile)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "loading .env")
		}
	}

	path := c.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	logging.SetupDefaultLogger(cfg.Logging.Level, cfg.Logging.Format)
	logging.GetLogger("main").Debug("Configuration loaded.", "path", path, "transport", cfg.Server.Transport)
	return cfg, nil
}
