// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/devserver"
	"github.com/jeranaias/shiftlog-tui/internal/export"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		want    Command
		inspect func(*testing.T, Args)
	}{
		{name: "no args starts the tui", argv: nil, want: CmdTUI},
		{name: "explicit tui", argv: []string{"tui"}, want: CmdTUI},
		{
			name: "login with flag",
			argv: []string{"login", "--user", "marta"},
			want: CmdLogin,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "marta", a.Username)
			},
		},
		{
			name: "login positional",
			argv: []string{"login", "marta"},
			want: CmdLogin,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "marta", a.Username)
			},
		},
		{
			name: "json before command",
			argv: []string{"--json", "reports"},
			want: CmdReports,
			inspect: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
			},
		},
		{
			name: "reports flags",
			argv: []string{"reports", "--json", "--all"},
			want: CmdReports,
			inspect: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.True(t, a.All)
			},
		},
		{
			name: "export flags",
			argv: []string{"export", "-o", "/tmp/out", "--format=json", "--open"},
			want: CmdExport,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "/tmp/out", a.Out)
				assert.Equal(t, "json", a.Format)
				assert.True(t, a.Open)
			},
		},
		{
			name: "config set",
			argv: []string{"config", "set", "ui.theme", "dark"},
			want: CmdConfig,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, "ui.theme", a.ConfigKey)
				assert.Equal(t, "dark", a.ConfigVal)
			},
		},
		{
			name: "global config and api flags",
			argv: []string{"--config", "alt.toml", "--api=http://x/api", "whoami"},
			want: CmdWhoami,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "alt.toml", a.ConfigPath)
				assert.Equal(t, "http://x/api", a.APIURL)
			},
		},
		{name: "version flag", argv: []string{"--version"}, want: CmdVersion},
		{name: "short version", argv: []string{"-v"}, want: CmdVersion},
		{
			name: "unknown command",
			argv: []string{"frobnicate"},
			want: CmdHelp,
			inspect: func(t *testing.T, a Args) {
				assert.Equal(t, "frobnicate", a.Unknown)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, args := Parse(tc.argv)
			assert.Equal(t, tc.want, cmd)
			if tc.inspect != nil {
				tc.inspect(t, args)
			}
		})
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"show", "--json", "extra", "--lines", "50", "--since=2025-01-01", "--", "--raw"}, "json")

	assert.Equal(t, "show", p.Subcommand())
	assert.True(t, p.BoolFlag("json"))
	assert.Equal(t, "extra", p.Positional(1), "boolean flags must not consume values")
	assert.Equal(t, "50", p.Flag("lines"))
	assert.Equal(t, "2025-01-01", p.Flag("--since"))
	assert.Equal(t, "--raw", p.Positional(2))
	assert.Equal(t, 3, p.PositionalCount())
	assert.Equal(t, "", p.Positional(9))
	assert.Equal(t, "def", p.FlagOrDefault("missing", "def"))
	assert.True(t, p.HasFlag("lines"))
	assert.False(t, p.HasFlag("nope"))
}

func TestArgParser_ExplicitBool(t *testing.T) {
	p := NewArgParser([]string{"--json=false", "--all=true"})
	assert.False(t, p.BoolFlag("json"))
	assert.True(t, p.BoolFlag("all"))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, GetExitCode(nil))
	assert.Equal(t, ExitUsage, GetExitCode(&UsageError{Message: "bad"}))
	assert.Equal(t, ExitAuth, GetExitCode(ErrNotLoggedIn))
	assert.Equal(t, ExitAuth, GetExitCode(api.ErrUnauthorized))
	assert.Equal(t, ExitNetwork, GetExitCode(api.ErrNetwork))
	assert.Equal(t, ExitError, GetExitCode(errors.New("boom")))
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

type testEnv struct {
	*Env
	srv *devserver.Server
	out *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv, err := devserver.New(devserver.Options{
		Secret: []byte("test-secret"),
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, srv.Seed("admin", "admin123"))
	require.NoError(t, srv.AddUser("marta", "marta123", model.RoleUser))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.API.BaseURL = ts.URL + "/api"
	cfg.Export.Dir = dir

	out := &bytes.Buffer{}
	return &testEnv{
		Env: &Env{
			Config:     cfg,
			ConfigPath: filepath.Join(dir, "config.toml"),
			Client:     api.New(cfg.API.BaseURL),
			Store:      auth.NewStore(filepath.Join(dir, "auth")),
			Stdin:      strings.NewReader(""),
			Stdout:     out,
			Stderr:     io.Discard,
		},
		srv: srv,
		out: out,
	}
}

func (e *testEnv) login(t *testing.T, user, pass string) {
	t.Helper()
	e.Stdin = strings.NewReader(pass + "\n")
	e.Prompter = nil
	require.NoError(t, Login(context.Background(), e.Env, Args{Username: user, Quiet: true}))
	e.out.Reset()

	// Login does not touch the client; later direct API calls need the token.
	creds, err := e.Store.Load()
	require.NoError(t, err)
	e.Client.SetToken(creds.Token)
}

func decodeEnvelope(t *testing.T, data []byte, into any) JSONResponse {
	t.Helper()
	var raw struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	if into != nil {
		require.NoError(t, json.Unmarshal(raw.Data, into))
	}
	return raw.JSONResponse
}

func TestLoginFromPipedInput(t *testing.T) {
	e := newTestEnv(t)
	e.Stdin = strings.NewReader("marta\nmarta123\n")

	require.NoError(t, Login(context.Background(), e.Env, Args{}))
	assert.Contains(t, e.out.String(), "Signed in as marta")

	creds, err := e.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, "marta", creds.Username)
	assert.Equal(t, model.RoleUser, creds.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.Stdin = strings.NewReader("wrong\n")

	err := Login(context.Background(), e.Env, Args{Username: "marta"})
	require.Error(t, err)
	assert.Equal(t, ExitAuth, GetExitCode(err))

	_, err = e.Store.Load()
	assert.ErrorIs(t, err, auth.ErrNoCredentials)
}

func TestLoginAbortedPrompt(t *testing.T) {
	e := newTestEnv(t)
	err := Login(context.Background(), e.Env, Args{})
	assert.ErrorIs(t, err, ErrPromptAborted)
}

func TestWhoami(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "admin", "admin123")

	require.NoError(t, Whoami(e.Env, Args{JSON: true}))
	var info WhoamiInfo
	resp := decodeEnvelope(t, e.out.Bytes(), &info)
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", info.Username)
	assert.Equal(t, model.RoleAdmin, info.Role)
	require.NotNil(t, info.ExpiresAt)
	assert.False(t, info.Expired)
}

func TestCommandsRequireLogin(t *testing.T) {
	e := newTestEnv(t)
	err := Reports(context.Background(), e.Env, Args{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, ExitAuth, GetExitCode(err))
}

func TestReports(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "marta", "marta123")

	_, err := e.Client.CreateReport(context.Background(), model.Report{
		Area: "Norte", Shift: "Día", Supervisor: "Marta Soto",
		Team: []model.TeamRow{{Name: "Juan Pérez", StartTime: "08:00", EndTime: "17:00"}},
	})
	require.NoError(t, err)

	require.NoError(t, Reports(context.Background(), e.Env, Args{JSON: true}))
	var reports []model.Report
	decodeEnvelope(t, e.out.Bytes(), &reports)
	require.Len(t, reports, 1)
	assert.Equal(t, "Norte", reports[0].Area)
	assert.Equal(t, "marta", reports[0].Username)

	e.out.Reset()
	require.NoError(t, Reports(context.Background(), e.Env, Args{}))
	lines := strings.Split(strings.TrimSpace(e.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SUBMITTED"))
	assert.Contains(t, lines[1], "Norte")
}

func TestReportsAllRequiresAdmin(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "marta", "marta123")

	err := Reports(context.Background(), e.Env, Args{All: true})
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))
}

func TestExport(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "marta", "marta123")

	err := Export(context.Background(), e.Env, Args{})
	assert.ErrorIs(t, err, export.ErrNothingToExport)

	_, err = e.Client.CreateReport(context.Background(), model.Report{
		Area: "Sur", Shift: "Noche", Supervisor: "Marta Soto",
		Team: []model.TeamRow{{Name: "Ana Muñoz"}},
	})
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, Export(context.Background(), e.Env, Args{Out: out, Format: "json", JSON: true}))
	var res struct {
		Path    string `json:"path"`
		Reports int    `json:"reports"`
	}
	decodeEnvelope(t, e.out.Bytes(), &res)
	assert.Equal(t, 1, res.Reports)
	assert.Equal(t, out, filepath.Dir(res.Path))
	assert.Equal(t, ".json", filepath.Ext(res.Path))

	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

func TestExportUnknownFormat(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "marta", "marta123")
	_, err := e.Client.CreateReport(context.Background(), model.Report{
		Area: "Sur", Shift: "Noche", Supervisor: "Marta Soto",
		Team: []model.TeamRow{{Name: "Ana Muñoz"}},
	})
	require.NoError(t, err)

	err = Export(context.Background(), e.Env, Args{Format: "pdf"})
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestLogoutIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "marta", "marta123")

	require.NoError(t, Logout(e.Env, Args{}))
	assert.Contains(t, e.out.String(), "Signed out marta")

	e.out.Reset()
	require.NoError(t, Logout(e.Env, Args{JSON: true}))
	var res map[string]bool
	decodeEnvelope(t, e.out.Bytes(), &res)
	assert.False(t, res["signed_out"])
}

func TestConfigCommand(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, ConfigCmd(e.Env, Args{Subcommand: "path"}))
	assert.Equal(t, e.ConfigPath, strings.TrimSpace(e.out.String()))

	e.out.Reset()
	set := Args{Subcommand: "set", ConfigKey: "session.warning_secs", ConfigVal: "45",
		Raw: []string{"set", "session.warning_secs", "45"}, Quiet: true}
	require.NoError(t, ConfigCmd(e.Env, set))
	assert.Equal(t, 45, e.Config.Session.WarningSecs)

	saved, err := config.LoadFromPath(e.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 45, saved.Session.WarningSecs)

	require.NoError(t, ConfigCmd(e.Env, Args{Subcommand: "get", ConfigKey: "session.warning_secs"}))
	assert.Equal(t, "45", strings.TrimSpace(e.out.String()))

	err = ConfigCmd(e.Env, Args{Subcommand: "bogus"})
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestRunVersionAndHelp(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, Run(context.Background(), CmdVersion, Args{}, e.Env))
	assert.Contains(t, e.out.String(), "shiftlog "+Version)

	e.out.Reset()
	require.NoError(t, Run(context.Background(), CmdHelp, Args{}, e.Env))
	assert.Contains(t, e.out.String(), "Usage:")

	err := Run(context.Background(), CmdHelp, Args{Unknown: "bogus"}, e.Env)
	assert.Equal(t, ExitUsage, GetExitCode(err))
}
