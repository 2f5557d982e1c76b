// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for unsent report drafts.
//
// Drafts are kept in a SQLite database (pure Go driver), one row per user,
// so a report interrupted by an idle timeout can be resumed after signing in
// again.
package storage
