// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
)

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// startSession creates the session for a fresh or restored credential and
// arms a new timeout controller for it.
func (m *Model) startSession(token string, role model.Role, username string) error {
	sess, err := session.New(token, role, username)
	if err != nil {
		return err
	}

	m.deps.Client.SetToken(token)
	m.teardown.Bind(sess)
	m.autosave.MarkClean()

	rt, td := m.rt, m.teardown
	ctrl := session.NewController(m.cfg.SessionTimeout(),
		func() error {
			err := td.Expire()
			rt.post(session.TimeoutMsg{Err: err})
			return err
		},
		session.WithClock(m.deps.Clock),
		session.WithObserver(session.ProgramObserver(rt.post)),
		session.WithTransitionHook(auditTransitions(m.deps.Audit, sess, m.cfg.SessionTimeout())),
	)
	if err := ctrl.AttachSources(m.surface); err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		ctrl.Dispose()
		return err
	}

	m.sess = sess
	m.ctrl = ctrl
	m.statusBar.SetUser(sess.Username(), sess.Role())
	m.syncOverlay()
	return nil
}

// endSession forgets every piece of per-session state. The controller is
// disposed; the credential teardown is the caller's job.
func (m *Model) endSession() {
	if m.ctrl != nil {
		m.ctrl.Dispose()
		m.ctrl = nil
	}
	m.sess = nil
	m.catalog = nil
	m.statusBar.SetUser("", "")
	m.statusBar.Session = session.View{}
	m.overlay.Reset()
	m.spinner.Stop()

	m.reports.reset()
	m.form = newFormScreen()
	m.form.resize(m.width - 2)
	m.admin.reset()
}

// logout ends the session on user request or when the server rejects the
// credential. The controller is disposed before teardown so no expiry can
// run concurrently.
func (m *Model) logout() tea.Cmd {
	if m.ctrl != nil {
		m.ctrl.Dispose()
	}
	err := m.teardown.Logout()
	m.endSession()
	cmd := m.toLogin()
	if err != nil {
		return tea.Batch(cmd, m.notify(components.NoticeError, "Sign-out incomplete: "+err.Error()))
	}
	return cmd
}

func (m *Model) toLogin() tea.Cmd {
	m.screen = screenLogin
	m.login.reset()
	return m.login.focusCmd()
}

// handleTimeout returns to the login screen after the controller expired and
// its teardown ran. A late message from a superseded controller is dropped.
func (m Model) handleTimeout(msg session.TimeoutMsg) (tea.Model, tea.Cmd) {
	if m.ctrl == nil || m.ctrl.State() != session.StateExpired {
		return m, nil
	}
	m.endSession()
	cmds := []tea.Cmd{
		m.toLogin(),
		m.notify(components.NoticeWarning, "Your session expired after a period of inactivity. Sign in again."),
	}
	if msg.Err != nil {
		cmds = append(cmds, m.notify(components.NoticeError, "Sign-out incomplete: "+msg.Err.Error()))
	}
	return m, tea.Batch(cmds...)
}

// handleSessionInput feeds input to the controller. It reports whether the
// input was consumed by the timeout overlay.
func (m *Model) handleSessionInput(msg tea.Msg) bool {
	if _, isInput := session.SignalFor(msg); !isInput || m.ctrl == nil {
		return false
	}

	view := m.ctrl.Snapshot()
	switch view.State {
	case session.StateExpired:
		return true
	case session.StateWarning:
		if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Select) {
			m.ctrl.StayConnected()
		} else {
			m.surface.Feed(msg)
		}
		m.syncOverlay()
		return true
	}

	m.surface.Feed(msg)
	return false
}

// syncOverlay re-reads the controller. ViewMsg is delivered asynchronously,
// so its payload may be older than the controller's current state.
func (m *Model) syncOverlay() {
	if m.ctrl == nil {
		return
	}
	view := m.ctrl.Snapshot()
	m.overlay.SetView(view)
	m.statusBar.Session = view
}

// auditTransitions records session lifecycle events. Expiry is recorded by
// the teardown together with its outcome.
func auditTransitions(log *audit.Logger, sess *session.Session, cfg session.Config) func(session.Transition) {
	return func(tr session.Transition) {
		if log == nil {
			return
		}
		id, user := sess.ID(), sess.Username()
		switch {
		case tr.Cause == session.CauseStart:
			_ = log.LogEvent(id, user, audit.EventSessionStarted, map[string]string{
				"idle":    session.FormatDuration(cfg.IdleDuration),
				"warning": session.FormatDuration(time.Duration(cfg.WarningSeconds) * time.Second),
			})
		case tr.To == session.StateWarning:
			_ = log.LogEvent(id, user, audit.EventSessionWarning, nil)
		case tr.From == session.StateWarning && tr.To == session.StateActive:
			_ = log.LogEvent(id, user, audit.EventSessionExtended, map[string]string{"cause": string(tr.Cause)})
		}
	}
}

// =============================================================================
// LOGIN RESULTS
// =============================================================================

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	m.spinner.Stop()

	if msg.Err != nil {
		m.login.err = loginError(msg.Err)
		if m.deps.Audit != nil {
			_ = m.deps.Audit.LogFailure("", msg.Username, audit.EventLoginFailed, msg.Err, nil)
		}
		return m, nil
	}

	if err := m.startSession(msg.Result.Token, msg.Result.Role, msg.Username); err != nil {
		m.login.err = err.Error()
		return m, nil
	}
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sess.ID(), msg.Username, audit.EventLogin,
			map[string]string{"role": string(msg.Result.Role)})
	}

	var cmds []tea.Cmd
	if m.deps.Store != nil {
		err := m.deps.Store.Save(auth.Credentials{
			Token:    msg.Result.Token,
			Role:     msg.Result.Role,
			Username: msg.Username,
		})
		if err != nil {
			cmds = append(cmds, m.notify(components.NoticeWarning, "Login not remembered: "+err.Error()))
		}
	}
	m.login.password.SetValue("")
	cmds = append(cmds, m.enterReports())
	return m, tea.Batch(cmds...)
}

// handleRestored resumes a saved login unless its token has expired.
func (m Model) handleRestored(msg restoredMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || m.sess != nil {
		if errors.Is(msg.Err, auth.ErrCorrupt) && m.deps.Store != nil {
			_ = m.deps.Store.Clear()
		}
		return m, nil
	}
	c := msg.Creds
	if claims, err := auth.ParseClaims(c.Token); err == nil && claims.Expired(time.Now()) {
		if m.deps.Store != nil {
			_ = m.deps.Store.Clear()
		}
		return m, m.notify(components.NoticeInfo, "Saved login expired. Sign in again.")
	}

	if err := m.startSession(c.Token, c.Role, c.Username); err != nil {
		return m, nil
	}
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sess.ID(), c.Username, audit.EventLogin,
			map[string]string{"role": string(c.Role), "restored": strconv.FormatBool(true)})
	}
	m.login.username.SetValue(c.Username)
	return m, m.enterReports()
}

func loginError(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return "Wrong username or password"
	}
	return api.MessageOf(err)
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// handleConfigReload applies a changed config file. The theme changes at
// once; session tunables apply from the next login.
func (m Model) handleConfigReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.notify(components.NoticeWarning, "Config not reloaded: "+msg.Err.Error())
	}
	m.cfg = msg.Config
	m.theme.Apply(msg.Config.UI.Theme)
	m.header.Detail = apiHost(msg.Config.API.BaseURL)
	m.dashboard.setURLs(msg.Config.Dashboard.ChartURLs)
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sessionID(), m.username(), audit.EventConfigReloaded, nil)
	}
	return m, m.notify(components.NoticeInfo, "Configuration reloaded")
}

func (m Model) sessionID() string {
	if m.sess == nil {
		return ""
	}
	return m.sess.ID()
}
