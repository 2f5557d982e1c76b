// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the shiftlog command line and runs the commands that
// do not need the terminal client.
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	if cmd == cli.CmdTUI {
//	    return app.Run(deps)
//	}
//	return cli.Run(ctx, cmd, args, env)
//
// # Commands
//
//   - login, logout, whoami: manage the saved session shared with the TUI
//   - reports: list reports, --json for scripts
//   - export: write reports to xlsx, json or markdown
//   - config: show, locate, read and change settings
//
// Every command accepts --json and returns a JSONResponse envelope.
package cli
