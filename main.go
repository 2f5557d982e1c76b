// shiftlog - Terminal client for construction-site shift reports.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/cli"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/storage"
	"github.com/jeranaias/shiftlog-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])
	if err := run(cmd, args); err != nil {
		if args.JSON {
			_ = cli.NewJSONErrorResponse(cmd.String(), err).Write(os.Stdout)
		} else {
			fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: ")+cli.Message(err))
		}
		os.Exit(cli.GetExitCode(err))
	}
}

func run(cmd cli.Command, args cli.Args) error {
	// Version and help never touch config or disk.
	if cmd == cli.CmdVersion || cmd == cli.CmdHelp {
		return cli.Run(context.Background(), cmd, args, &cli.Env{})
	}

	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		return err
	}
	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return fmt.Errorf("locate data directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	opts := []api.Option{
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithRateLimit(cfg.API.RequestsPerSec),
		api.WithMaxRetries(cfg.API.MaxRetries),
	}
	// Request logging would corrupt the alternate screen.
	if os.Getenv("SHIFTLOG_DEBUG") != "" && cmd != cli.CmdTUI {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, api.WithLogger(func(format string, a ...any) {
			logger.Debug(fmt.Sprintf(format, a...))
		}))
	}
	client := api.New(cfg.API.BaseURL, opts...)
	store := auth.NewStore(dataDir)

	logger, err := openAudit(cfg, dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.WarningStyle.Render("Warning: audit log disabled: ")+err.Error())
	}
	if logger != nil {
		defer logger.Close()
	}

	if cmd == cli.CmdTUI {
		if !cli.IsTTY() || !cli.IsStdoutTTY() {
			return &cli.TTYRequiredError{Operation: "run the TUI"}
		}
		drafts, err := storage.OpenDraftStore(filepath.Join(dataDir, "drafts.db"))
		if err != nil {
			return err
		}
		defer drafts.Close()

		return app.Run(app.Deps{
			Config:     cfg,
			ConfigPath: cfgPath,
			Client:     client,
			Store:      store,
			Drafts:     drafts,
			Audit:      logger,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, cmd, args, &cli.Env{
		Config:     cfg,
		ConfigPath: args.ConfigPath,
		Client:     client,
		Store:      store,
		Audit:      logger,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Color:      cli.ColorsEnabled(),
	})
}

// loadConfig returns the config and the file to watch for reloads, "" when
// running on defaults.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, args.ConfigPath, nil
	}

	cfg, err := config.Load()
	if err != nil {
		if cfg == nil {
			return nil, "", err
		}
		fmt.Fprintln(os.Stderr, cli.WarningStyle.Render("Warning: ")+err.Error()+"; using defaults")
	}
	path, _ := config.ConfigPathTOML()
	if _, statErr := os.Stat(path); statErr != nil {
		path = ""
	}
	return cfg, path, nil
}

func openAudit(cfg *config.Config, dataDir string) (*audit.Logger, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	path := cfg.Audit.LogPath
	if path == "" {
		path = filepath.Join(dataDir, "audit.log")
	}
	logger, err := audit.NewLogger(path)
	if err != nil {
		return nil, err
	}
	logger.SetMaxSize(int64(cfg.Audit.MaxSizeMB) * 1024 * 1024)
	return logger, nil
}
