// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and user-facing error text.

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitUsage   = 2
	ExitAuth    = 3
	ExitNetwork = 4
)

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// ErrNotLoggedIn is returned by commands that need a saved session.
var ErrNotLoggedIn = errors.New("not signed in; run 'shiftlog login'")

// GetExitCode maps err to a process exit code.
func GetExitCode(err error) int {
	var usage *UsageError
	var tty *TTYRequiredError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage), errors.As(err, &tty):
		return ExitUsage
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, auth.ErrNoCredentials), errors.Is(err, auth.ErrCorrupt):
		return ExitAuth
	case errors.Is(err, api.ErrNetwork):
		return ExitNetwork
	}
	return ExitError
}

// Message returns the text to print for err.
func Message(err error) string {
	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		return usage.Error() + " (see 'shiftlog help')"
	case errors.Is(err, api.ErrUnauthorized):
		return "the server rejected the saved session; run 'shiftlog login'"
	case errors.Is(err, api.ErrNetwork):
		return api.MessageOf(err)
	}
	return err.Error()
}
