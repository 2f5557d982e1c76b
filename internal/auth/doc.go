// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth keeps the signed-in credential between runs and tears it down
// on logout or idle expiry.
//
// The credential is sealed with XChaCha20-Poly1305 under a random key kept in
// a separate 0600 file, and written atomically. Claims are decoded without
// verification for display only; the server remains the authority.
package auth
