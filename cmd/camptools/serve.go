package main

// file: cmd/camptools/serve.go

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dkoosis/camptools/internal/server"
	"github.com/dkoosis/camptools/internal/tools"
	"github.com/spf13/pflag"
)

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	transport := fs.StringP("transport", "t", "", "Transport: stdio or http. Overrides the config.")
	addr := fs.String("addr", "", "Listen address for the http transport. Overrides the config.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return err
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.GetLogger("main")
	svc, err := tools.NewService(tools.Env{
		Config: cfg,
		Store:  auth.NewKeyringStore(logger),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting camptools.",
		"version", tools.Version,
		"transport", cfg.Server.Transport,
		"base_url", cfg.Basecamp.BaseURL,
		"tools", len(svc.Names()),
	)
	if err := server.New(cfg, svc, logger).Serve(ctx); err != nil {
		logger.Error("Server failed.", "error", err)
		return err
	}
	logger.Info("Server stopped.")
	return nil
}
