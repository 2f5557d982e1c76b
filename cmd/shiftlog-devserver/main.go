// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command shiftlog-devserver runs an in-memory shift report API for local
// development and demos.
//
//	shiftlog-devserver [--addr :4000] [--admin admin] [--password admin123]
//
// The admin account and secret can also come from SHIFTLOG_DEV_ADMIN,
// SHIFTLOG_DEV_PASSWORD and SHIFTLOG_DEV_SECRET, including from a .env file.
// Prometheus metrics are served on /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeranaias/shiftlog-tui/internal/devserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shiftlog-devserver:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("SHIFTLOG_DEV_ADDR", ":4000"), "listen address")
	admin := flag.String("admin", envOr("SHIFTLOG_DEV_ADMIN", "admin"), "seeded administrator username")
	password := flag.String("password", envOr("SHIFTLOG_DEV_PASSWORD", "admin123"), "seeded administrator password")
	ttl := flag.Duration("token-ttl", devserver.DefaultTokenTTL, "lifetime of issued tokens")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv, err := devserver.New(devserver.Options{
		Secret:   []byte(os.Getenv("SHIFTLOG_DEV_SECRET")),
		TokenTTL: *ttl,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if err := srv.Seed(*admin, *password); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr, "admin", *admin)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
