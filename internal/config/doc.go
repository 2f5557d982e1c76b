// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for shiftlog.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, validation and live reload.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SHIFTLOG_*), including those from .env
//   - ~/.shiftlog/config.toml
//   - ~/.shiftlog/config.json
//   - Built-in defaults
//
// SHIFTLOG_HOME replaces ~/.shiftlog.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := session.NewController(cfg.SessionTimeout(), teardown)
//
// Reload on change:
//
//	w, err := config.Watch(path, 0, func(cfg *config.Config, err error) { ... })
//	defer w.Close()
package config
