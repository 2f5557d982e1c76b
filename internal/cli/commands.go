// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Handlers for the non-interactive commands.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/export"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// Env carries the collaborators a command needs.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Client     *api.Client
	Store      *auth.Store
	Audit      *audit.Logger // may be nil

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompter defaults to the terminal when stdin is a TTY, otherwise to
	// reading lines from Stdin.
	Prompter Prompter

	// Color enables syntax highlighting of --json output.
	Color bool

	Now func() time.Time
}

func (e *Env) prompter() Prompter {
	if e.Prompter != nil {
		return e.Prompter
	}
	in := e.Stdin
	if in == nil {
		in = os.Stdin
	}
	if in == io.Reader(os.Stdin) && IsTTY() {
		return termPrompter{out: e.stderr()}
	}
	return newLinePrompter(in)
}

func (e *Env) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Env) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) logEvent(user, event string, meta map[string]string) {
	if e.Audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]string{}
	}
	meta["via"] = "cli"
	_ = e.Audit.LogEvent("", user, event, meta)
}

// Run executes every command except the TUI.
func Run(ctx context.Context, cmd Command, args Args, env *Env) error {
	switch cmd {
	case CmdLogin:
		return Login(ctx, env, args)
	case CmdLogout:
		return Logout(env, args)
	case CmdWhoami:
		return Whoami(env, args)
	case CmdReports:
		return Reports(ctx, env, args)
	case CmdExport:
		return Export(ctx, env, args)
	case CmdConfig:
		return ConfigCmd(env, args)
	case CmdVersion:
		if args.JSON {
			return NewJSONResponse("version", map[string]string{
				"version": Version, "commit": GitCommit, "built": BuildDate,
			}).Write(env.stdout())
		}
		PrintVersion(env.stdout())
		return nil
	case CmdHelp:
		if args.Unknown != "" {
			return &UsageError{Message: "unknown command " + strconv.Quote(args.Unknown)}
		}
		PrintUsage(env.stdout())
		return nil
	}
	return &UsageError{Command: cmd.String(), Message: "not available from the command line"}
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// Login signs in and saves the session for the TUI and later commands.
func Login(ctx context.Context, env *Env, args Args) error {
	p := env.prompter()
	user := strings.TrimSpace(args.Username)
	if user == "" {
		var err error
		if user, err = p.Username("Username: "); err != nil {
			return err
		}
	}
	if user == "" {
		return &UsageError{Command: "login", Message: "username is required"}
	}
	pass, err := p.Password("Password: ")
	if err != nil {
		return err
	}

	res, err := env.Client.Login(ctx, user, pass)
	if err != nil {
		if env.Audit != nil {
			_ = env.Audit.LogFailure("", user, audit.EventLoginFailed, err, map[string]string{"via": "cli"})
		}
		if errors.Is(err, api.ErrUnauthorized) {
			return fmt.Errorf("login failed: wrong username or password: %w", err)
		}
		return err
	}
	if err := env.Store.Save(auth.Credentials{Token: res.Token, Role: res.Role, Username: user}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	env.logEvent(user, audit.EventLogin, map[string]string{"role": string(res.Role)})

	if args.JSON {
		return NewJSONResponse("login", map[string]string{"username": user, "role": string(res.Role)}).Write(env.stdout())
	}
	if !args.Quiet {
		fmt.Fprintln(env.stdout(), SuccessStyle.Render("Signed in as "+user+" ("+res.Role.DisplayName()+")"))
	}
	return nil
}

// Logout forgets the saved session. Logging out twice is not an error.
func Logout(env *Env, args Args) error {
	creds, err := env.Store.Load()
	if err != nil && !errors.Is(err, auth.ErrNoCredentials) && !errors.Is(err, auth.ErrCorrupt) {
		return err
	}
	wasSignedIn := err == nil
	if err := env.Store.Clear(); err != nil {
		return err
	}
	if wasSignedIn {
		env.logEvent(creds.Username, audit.EventLogout, nil)
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"signed_out": wasSignedIn}).Write(env.stdout())
	}
	if !args.Quiet {
		if wasSignedIn {
			fmt.Fprintln(env.stdout(), "Signed out "+creds.Username)
		} else {
			fmt.Fprintln(env.stdout(), DimStyle.Render("Not signed in"))
		}
	}
	return nil
}

// WhoamiInfo is the whoami output.
type WhoamiInfo struct {
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	Server    string     `json:"server"`
}

// Whoami shows the saved session.
func Whoami(env *Env, args Args) error {
	creds, err := loadSession(env)
	if err != nil {
		return err
	}
	info := WhoamiInfo{
		Username: creds.Username,
		Role:     creds.Role,
		SavedAt:  creds.SavedAt,
		Server:   env.Config.API.BaseURL,
	}
	if claims, err := auth.ParseClaims(creds.Token); err == nil && !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		info.ExpiresAt = &exp
		info.Expired = claims.Expired(env.now())
	}

	if args.JSON {
		return NewJSONResponse("whoami", info).Write(env.stdout())
	}
	w := env.stdout()
	fmt.Fprintln(w, RenderField("User", info.Username))
	fmt.Fprintln(w, RenderField("Role", info.Role.DisplayName()))
	fmt.Fprintln(w, RenderField("Server", info.Server))
	if !info.SavedAt.IsZero() {
		fmt.Fprintln(w, RenderField("Signed in", info.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	if info.ExpiresAt != nil {
		status := info.ExpiresAt.Local().Format("2006-01-02 15:04")
		if info.Expired {
			status += " " + ErrorStyle.Render("(expired)")
		}
		fmt.Fprintln(w, RenderField("Expires", status))
	}
	return nil
}

// loadSession reads the saved credential and hands its token to the client.
func loadSession(env *Env) (auth.Credentials, error) {
	creds, err := env.Store.Load()
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		return auth.Credentials{}, ErrNotLoggedIn
	case err != nil:
		return auth.Credentials{}, err
	}
	env.Client.SetToken(creds.Token)
	return creds, nil
}

// =============================================================================
// REPORT COMMANDS
// =============================================================================

func fetchReports(ctx context.Context, env *Env, args Args) ([]model.Report, auth.Credentials, error) {
	creds, err := loadSession(env)
	if err != nil {
		return nil, creds, err
	}
	if args.All && creds.Role != model.RoleAdmin {
		return nil, creds, &UsageError{Command: "reports", Message: "--all requires an administrator"}
	}

	var reports []model.Report
	if creds.Role == model.RoleAdmin {
		reports, err = env.Client.AllReports(ctx)
	} else {
		reports, err = env.Client.MyReports(ctx)
	}
	if err != nil {
		return nil, creds, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].SubmittedAt.After(reports[j].SubmittedAt)
	})
	return reports, creds, nil
}

// Reports lists the reports visible to the saved session.
func Reports(ctx context.Context, env *Env, args Args) error {
	reports, _, err := fetchReports(ctx, env, args)
	if err != nil {
		return err
	}

	if args.JSON {
		data, err := NewJSONResponse("reports", reports).Marshal()
		if err != nil {
			return err
		}
		out := string(data)
		if env.Color {
			out = components.HighlightJSON(out)
		}
		_, err = fmt.Fprintln(env.stdout(), out)
		return err
	}

	w := env.stdout()
	if len(reports) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No reports."))
		return nil
	}
	fmt.Fprintln(w, formatReportRow("SUBMITTED", "AREA", "SHIFT", "SUPERVISOR", "CREW", "USER"))
	for _, r := range reports {
		submitted := ""
		if !r.SubmittedAt.IsZero() {
			submitted = r.SubmittedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintln(w, formatReportRow(submitted, r.Area, r.Shift, r.Supervisor,
			strconv.Itoa(r.MemberCount()), r.Username))
	}
	if !args.Quiet {
		fmt.Fprintln(w, DimStyle.Render(strconv.Itoa(len(reports))+" report(s)"))
	}
	return nil
}

func formatReportRow(submitted, area, shift, supervisor, crew, user string) string {
	cell := func(s string, w int) string {
		return util.PadRight(util.TruncateWidth(s, w), w)
	}
	return strings.Join([]string{
		cell(submitted, 16), cell(area, 20), cell(shift, 6),
		cell(supervisor, 20), cell(crew, 4), util.TruncateWidth(user, 16),
	}, "  ")
}

// Export writes the visible reports to a file.
func Export(ctx context.Context, env *Env, args Args) error {
	reports, creds, err := fetchReports(ctx, env, args)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return export.ErrNothingToExport
	}
	cat, err := env.Client.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}

	format := args.Format
	if format == "" {
		format = env.Config.Export.Format
	}
	exporter, err := export.New(format, cat)
	if err != nil {
		return &UsageError{Command: "export", Message: err.Error()}
	}
	dir := args.Out
	if dir == "" {
		dir = env.Config.Export.Dir
	}

	path, err := export.ToFile(reports, exporter, &export.Options{
		OutputDir:       dir,
		OpenAfterExport: args.Open,
		Now:             env.Now,
	})
	if path != "" {
		env.logEvent(creds.Username, audit.EventExport, map[string]string{
			"path":    path,
			"reports": strconv.Itoa(len(reports)),
		})
	}
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("export", map[string]any{"path": path, "reports": len(reports)}).Write(env.stdout())
	}
	if !args.Quiet {
		fmt.Fprintln(env.stdout(), SuccessStyle.Render("Exported "+strconv.Itoa(len(reports))+" report(s) to "+path))
	}
	return nil
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// ConfigCmd handles config show|path|get|set.
func ConfigCmd(env *Env, args Args) error {
	w := env.stdout()
	cfg := env.Config

	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			var v any
			if err := json.Unmarshal([]byte(cfg.String()), &v); err != nil {
				return err
			}
			return NewJSONResponse("config", v).Write(w)
		}
		_, err := fmt.Fprintln(w, cfg.String())
		return err

	case "path":
		path, err := configPath(env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, path)
		return err

	case "get":
		if args.ConfigKey == "" {
			return &UsageError{Command: "config get", Message: "key is required; keys: " + strings.Join(config.GetAllKeys(), ", ")}
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config", map[string]any{args.ConfigKey: v}).Write(w)
		}
		_, err = fmt.Fprintln(w, v)
		return err

	case "set":
		if args.ConfigKey == "" || len(args.Raw) < 3 {
			return &UsageError{Command: "config set", Message: "usage: config set KEY VALUE"}
		}
		next := cfg.Clone()
		if err := next.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		path, err := configPath(env)
		if err != nil {
			return err
		}
		if err := config.SaveTOML(next, path); err != nil {
			return err
		}
		*cfg = *next
		if !args.Quiet {
			fmt.Fprintf(w, "%s = %s\n", args.ConfigKey, args.ConfigVal)
		}
		return nil
	}
	return &UsageError{Command: "config", Message: "unknown subcommand " + strconv.Quote(args.Subcommand)}
}

func configPath(env *Env) (string, error) {
	if env.ConfigPath != "" {
		return env.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}
