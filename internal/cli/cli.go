// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and usage text for shiftlog.

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdReports
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdWhoami:
		return "whoami"
	case CmdReports:
		return "reports"
	case CmdExport:
		return "export"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON       bool
	Quiet      bool
	ConfigPath string // --config: alternate config file
	APIURL     string // --api: overrides [api] base_url

	// Command-specific
	Subcommand string
	Username   string // login --user
	Out        string // export --out
	Format     string // export --format
	Open       bool   // export --open
	All        bool   // reports --all (admin)
	ConfigKey  string
	ConfigVal  string

	// Unknown is set when the first argument named no command.
	Unknown string

	Raw []string
}

const usageText = `shiftlog - construction shift reports from the terminal

Usage:
  shiftlog [tui]                 Start the terminal client (default)
  shiftlog login [--user NAME]   Sign in and remember the session
  shiftlog logout                Forget the saved session
  shiftlog whoami                Show the saved session
  shiftlog reports [--json]      List reports (admins see every report)
    --all                        Admins only; same as the default for admins
  shiftlog export [--out DIR]    Export reports to a file
    --format xlsx|json|md        File format (default from config: xlsx)
    --open                       Open the file when done
  shiftlog config show           Print the active configuration
  shiftlog config path           Print the config file location
  shiftlog config get KEY        Print one setting (e.g. session.warning_secs)
  shiftlog config set KEY VALUE  Change one setting and save
  shiftlog version               Show version information
  shiftlog help                  Show this help

Global flags:
  --json                         Machine-readable output where supported
  -q, --quiet                    Suppress informational output
  --config FILE                  Use FILE instead of ~/.shiftlog/config.toml
  --api URL                      Override the API base URL

Environment:
  SHIFTLOG_HOME                  Directory for config, credentials and drafts
  SHIFTLOG_API_URL               API base URL
  SHIFTLOG_IDLE_SECS             Idle seconds before the inactivity warning
  SHIFTLOG_WARNING_SECS          Length of the warning countdown
  SHIFTLOG_THEME                 dark, light or auto
  SHIFTLOG_EXPORT_DIR            Default export directory
  NO_COLOR                       Disable colored output
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "shiftlog %s\n", Version)
	fmt.Fprintf(w, "  commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses the arguments after the program name.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining
	p := NewArgParser(remaining, "json", "all", "open", "q", "quiet")
	if p.BoolFlag("json") {
		args.JSON = true
	}

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "login":
		args.Username = p.Flag("user", "u")
		if args.Username == "" {
			args.Username = p.Positional(0)
		}
		return CmdLogin, args

	case "logout":
		return CmdLogout, args

	case "whoami", "status":
		return CmdWhoami, args

	case "reports", "ls":
		args.All = p.BoolFlag("all")
		return CmdReports, args

	case "export":
		args.Out = p.Flag("out", "o")
		args.Format = p.Flag("format", "f")
		args.Open = p.BoolFlag("open")
		return CmdExport, args

	case "config":
		args.Subcommand = p.Positional(0)
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = p.Positional(2)
		return CmdConfig, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args
	}

	args.Unknown = cmd
	return CmdHelp, args
}

// parseGlobalFlags extracts global flags wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var (
		remaining []string
		args      Args
	)
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--config" && i+1 < len(argv):
			i++
			args.ConfigPath = argv[i]
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--api" && i+1 < len(argv):
			i++
			args.APIURL = argv[i]
		case strings.HasPrefix(arg, "--api="):
			args.APIURL = strings.TrimPrefix(arg, "--api=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
