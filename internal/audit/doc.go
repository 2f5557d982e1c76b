// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides the append-only local audit log with secret
// redaction.
//
// One line is written per event:
//
//	2025-03-01 08:00:00 | SESSION_EXPIRED | 3f2a... | marta | idle=600s | SUCCESS
//
// Bearer tokens, JWTs and password assignments are redacted before the line
// reaches disk. The file is created 0600 and rotated by size.
package audit
