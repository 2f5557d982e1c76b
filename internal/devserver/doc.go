// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver implements the report service API in memory.
//
// It serves every endpoint the api client uses, so the TUI can be run and
// tested without the production backend. Passwords are bcrypt hashed, tokens
// are HS256 JWTs and IDs are UUIDs. State is lost on restart.
//
// Routes (under /api):
//
//	POST   /auth/login          {username, password} -> {token, role}
//	POST   /auth/register       admin only
//	GET    /myreports           reports of the caller
//	GET    /reports             admin only
//	POST   /reports
//	DELETE /reports/{id}        owner or admin
//	GET    /catalog/{kind}
//	POST   /catalog/{kind}      admin only
//	DELETE /catalog/{kind}/{id} admin only
//
// Prometheus metrics are served at /metrics.
package devserver
