// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/devserver"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/storage"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

// manualClock only moves when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	when    time.Time
	fn      func()
	stopped bool
	fired   bool
	clock   *manualClock
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{when: c.now.Add(d), fn: f, clock: c}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.when
		next.fired = true
		c.mu.Unlock()
		next.fn()
	}
}

type harness struct {
	t      *testing.T
	srv    *devserver.Server
	clock  *manualClock
	store  *auth.Store
	drafts *storage.DraftStore
	posted chan tea.Msg
	m      Model
}

func newHarness(t *testing.T) *harness {
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
	drafts, err := storage.OpenDraftStore(filepath.Join(dir, "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { drafts.Close() })
	logger, err := audit.NewLogger(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	cfg := config.Default()
	cfg.API.BaseURL = ts.URL + "/api"
	cfg.Session.IdleTimeoutSecs = 60
	cfg.Session.WarningSecs = 5
	cfg.UI.Theme = "dark"

	h := &harness{
		t:      t,
		srv:    srv,
		clock:  &manualClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)},
		store:  auth.NewStore(filepath.Join(dir, "auth")),
		drafts: drafts,
		posted: make(chan tea.Msg, 256),
	}
	h.m = New(Deps{
		Config: cfg,
		Client: api.New(cfg.API.BaseURL),
		Store:  h.store,
		Drafts: drafts,
		Audit:  logger,
		Clock:  h.clock,
	})
	h.m.rt.setSend(func(msg tea.Msg) {
		select {
		case h.posted <- msg:
		default:
		}
	})
	h.m.resize(120, 40)
	return h
}

// relevant filters out timer-driven messages so waitFor never loops on them.
func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case loginResultMsg, restoredMsg, reportsLoadedMsg, catalogLoadedMsg,
		reportSubmittedMsg, reportDeletedMsg, exportDoneMsg, catalogChangedMsg,
		userRegisteredMsg, draftLoadedMsg, draftSavedMsg:
		return true
	}
	return false
}

// send delivers msg and runs resulting commands until done reports true.
func (h *harness) send(msg tea.Msg, done func(Model) bool) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd, done)
}

func (h *harness) run(cmd tea.Cmd, done func(Model) bool) {
	h.t.Helper()
	results := make(chan tea.Msg, 64)
	var start func(tea.Cmd)
	start = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					start(bc)
				}
				return
			}
			select {
			case results <- msg:
			default:
			}
		}()
	}
	start(cmd)

	if done == nil {
		return
	}
	deadline := time.After(5 * time.Second)
	for !done(h.m) {
		select {
		case msg := <-results:
			if !relevant(msg) {
				continue
			}
			next, c := h.m.Update(msg)
			h.m = next.(Model)
			start(c)
		case <-deadline:
			h.t.Fatalf("timed out on screen %s", h.m.screen)
		}
	}
}

func (h *harness) key(s string) {
	h.t.Helper()
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	h.send(msg, nil)
}

func (h *harness) login(user, pass string) {
	h.t.Helper()
	h.m.login.username.SetValue(user)
	h.m.login.password.SetValue(pass)
	h.m.login.setFocus(1)
	h.send(tea.KeyMsg{Type: tea.KeyEnter}, func(m Model) bool {
		return m.screen == screenReports && m.reports.loaded && m.catalog != nil
	})
}

// waitTimeout returns the TimeoutMsg posted by the controller.
func (h *harness) waitTimeout() session.TimeoutMsg {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-h.posted:
			if tm, ok := msg.(session.TimeoutMsg); ok {
				return tm
			}
		case <-deadline:
			h.t.Fatal("no TimeoutMsg posted")
		}
	}
}

// =============================================================================
// FLOW TESTS
// =============================================================================

func TestLoginLoadsReportsAndCatalog(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	require.NotNil(t, h.m.sess)
	assert.Equal(t, "marta", h.m.sess.Username())
	assert.Equal(t, session.StateActive, h.m.ctrl.State())
	assert.Len(t, h.m.catalog.Workers, 3)

	creds, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "marta", creds.Username)
	assert.Equal(t, model.RoleUser, creds.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.m.login.username.SetValue("marta")
	h.m.login.password.SetValue("nope")
	h.m.login.setFocus(1)
	h.send(tea.KeyMsg{Type: tea.KeyEnter}, func(m Model) bool { return !m.login.busy })

	assert.Equal(t, screenLogin, h.m.screen)
	assert.Nil(t, h.m.sess)
	assert.NotEmpty(t, h.m.login.err)
}

func TestIdleWarningAndStayConnected(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	h.clock.Advance(60 * time.Second)
	h.send(session.ViewMsg{}, nil)
	require.Equal(t, session.StateWarning, h.m.ctrl.State())
	assert.True(t, h.m.overlay.IsWarning())
	assert.Contains(t, h.m.View(), "Session about to expire")

	// Enter goes to the overlay, not to the reports list.
	h.key("enter")
	assert.Equal(t, session.StateActive, h.m.ctrl.State())
	assert.Equal(t, screenReports, h.m.screen)
	assert.False(t, h.m.overlay.IsVisible())
}

func TestAnyKeyDuringWarningIsActivity(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	h.clock.Advance(60 * time.Second)
	require.Equal(t, session.StateWarning, h.m.ctrl.State())

	// "n" would open the form if it reached the screen.
	h.key("n")
	assert.Equal(t, session.StateActive, h.m.ctrl.State())
	assert.Equal(t, screenReports, h.m.screen)
}

func TestExpiryReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	h.clock.Advance(60 * time.Second)
	h.clock.Advance(10 * time.Second)
	require.Equal(t, session.StateExpired, h.m.ctrl.State())

	tm := h.waitTimeout()
	assert.NoError(t, tm.Err)
	h.send(tm, nil)

	assert.Equal(t, screenLogin, h.m.screen)
	assert.Nil(t, h.m.sess)
	assert.Nil(t, h.m.ctrl)
	assert.Equal(t, 1, h.m.notices.Len())

	_, err := h.store.Load()
	assert.True(t, errors.Is(err, auth.ErrNoCredentials), "credential should be cleared, got %v", err)
}

func TestStaleTimeoutIgnored(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	h.send(session.TimeoutMsg{}, nil)
	assert.Equal(t, screenReports, h.m.screen)
	assert.NotNil(t, h.m.sess)
}

func TestDraftSavedOnExpiry(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, func(m Model) bool {
		return m.screen == screenForm
	})
	for _, r := range "Norte" {
		h.key(string(r))
	}
	assert.Equal(t, "Norte", h.m.form.draft.Area)
	assert.True(t, h.m.autosave.IsDirty())

	h.clock.Advance(60 * time.Second)
	h.clock.Advance(10 * time.Second)
	h.send(h.waitTimeout(), nil)
	require.Equal(t, screenLogin, h.m.screen)

	saved, err := h.drafts.LoadDraft(context.Background(), "marta")
	require.NoError(t, err)
	assert.Equal(t, "Norte", saved.Draft.Area)

	// Signing in again restores it.
	h.login("marta", "marta123")
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, func(m Model) bool {
		return m.form.draft.Area == "Norte"
	})
}

func TestSubmitReport(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")
	h.key("n")
	require.Equal(t, screenForm, h.m.screen)

	worker := h.m.catalog.Workers[0]
	d := model.NewDraft()
	d.Area, d.Shift, d.Supervisor = "Norte", "Día", "Marta Soto"
	d.Team[0] = model.TeamRow{
		WorkerID: worker.ID, Name: worker.Name, RUT: worker.RUT, Position: worker.Position,
		ActivityID: h.m.catalog.Activities[0].ID, Attendance: model.AttendanceOnSite,
		StartTime: "08:00", EndTime: "17:00",
	}
	h.m.form.load(d)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlS}, func(m Model) bool {
		return len(m.reports.items) == 1
	})

	assert.Equal(t, screenReports, h.m.screen)
	reports := h.srv.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "Excavación", reports[0].Team[0].Activity)
	assert.True(t, h.m.form.draft.IsBlank(), "form should be cleared after submit")
}

func TestSubmitIncompleteShowsError(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")
	h.key("n")
	h.key("ctrl+s")

	assert.Equal(t, screenForm, h.m.screen)
	assert.Equal(t, "Area, shift and supervisor are required", h.m.form.err)
	assert.False(t, h.m.form.submitting)
}

func TestLogoutClearsCredentials(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")}, nil)

	assert.Equal(t, screenLogin, h.m.screen)
	assert.Nil(t, h.m.sess)
	_, err := h.store.Load()
	assert.ErrorIs(t, err, auth.ErrNoCredentials)
}

func TestRestoreSavedLogin(t *testing.T) {
	h := newHarness(t)
	h.login("admin", "admin123")
	token := h.m.sess.Token()

	// A fresh model resumes from the stored credential without a password.
	// Both dev servers sign with the same secret.
	h2 := newHarness(t)
	require.NoError(t, h2.store.Save(auth.Credentials{Token: token, Role: model.RoleAdmin, Username: "admin"}))
	h2.run(restoreCmd(h2.store), func(m Model) bool { return m.sess != nil })
	assert.Equal(t, "admin", h2.m.sess.Username())
	assert.True(t, h2.m.isAdmin())
}

func TestAdminAddsCatalogEntry(t *testing.T) {
	h := newHarness(t)
	h.login("admin", "admin123")

	h.key("a")
	require.Equal(t, screenAdmin, h.m.screen)
	before := len(h.m.catalog.Activities)

	h.key("n")
	require.True(t, h.m.admin.adding)
	h.m.admin.inputs[0].SetValue("Demolición")
	h.send(tea.KeyMsg{Type: tea.KeyEnter}, func(m Model) bool {
		return len(m.catalog.Activities) == before+1
	})
	assert.False(t, h.m.admin.adding)

	// The form picks up the new option.
	var labels []string
	for _, o := range h.m.form.fields[fActivity].options {
		labels = append(labels, o.Label)
	}
	assert.Contains(t, labels, "Demolición")
}

func TestNonAdminCannotOpenAdmin(t *testing.T) {
	h := newHarness(t)
	h.login("marta", "marta123")
	h.key("a")
	assert.Equal(t, screenReports, h.m.screen)
}

// =============================================================================
// UNIT TESTS
// =============================================================================

func TestFieldCycle(t *testing.T) {
	f := newChoiceField("Shift", []option{{"Día", "Día"}, {"Noche", "Noche"}})
	assert.Equal(t, "", f.value())
	f.cycle(1)
	assert.Equal(t, "Día", f.value())
	f.cycle(1)
	assert.Equal(t, "Noche", f.value())
	f.cycle(1)
	assert.Equal(t, "", f.value())
	f.cycle(-1)
	assert.Equal(t, "Noche", f.value())

	f.setValue("Tarde")
	assert.Equal(t, "Tarde", f.value(), "unknown values are kept")
	assert.Equal(t, "< Tarde >", f.display())
}

func TestFormRows(t *testing.T) {
	f := newFormScreen()
	f.fields[fStart].setValue("08:00")
	f.store()
	f.addRow()
	assert.Equal(t, 1, f.row)
	assert.Equal(t, "", f.fields[fStart].value())

	f.switchRow(0)
	assert.Equal(t, "08:00", f.fields[fStart].value())

	f.removeRow()
	f.removeRow()
	assert.Len(t, f.draft.Team, 1)
}

func TestScrollWindow(t *testing.T) {
	lines := strings.Split("a b c d e f g h", " ")
	assert.Equal(t, lines, scrollWindow(lines, 0, 20))
	assert.Equal(t, []string{"a", "b", "c"}, scrollWindow(lines, 0, 3))
	assert.Equal(t, []string{"d", "e", "f"}, scrollWindow(lines, 4, 3))
	assert.Equal(t, []string{"f", "g", "h"}, scrollWindow(lines, 7, 3))
}

func TestSummarize(t *testing.T) {
	s := summarize([]model.Report{
		{Area: "Norte", Team: []model.TeamRow{
			{Attendance: model.AttendanceOnSite, StartTime: "08:00", EndTime: "17:30"},
			{Attendance: model.AttendanceOnSite},
		}},
		{Area: "Sur", Team: []model.TeamRow{{StartTime: "22:00", EndTime: "06:00"}}},
	})
	assert.Equal(t, 2, s.reports)
	assert.Equal(t, 3, s.members)
	assert.Equal(t, 17*60+30, s.minutes)
	assert.Equal(t, 2, s.attendance[model.AttendanceOnSite])
	assert.Equal(t, 1, s.byArea["Sur"])
}

func TestApiHost(t *testing.T) {
	assert.Equal(t, "example.com:4000", apiHost("http://example.com:4000/api"))
	assert.Equal(t, "plain", apiHost(" plain "))
}
