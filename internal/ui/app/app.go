// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/auth"
	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/config"
	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/storage"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

type screen int

const (
	screenLogin screen = iota
	screenReports
	screenDetail
	screenForm
	screenAdmin
	screenDashboard
)

func (s screen) String() string {
	switch s {
	case screenLogin:
		return "Sign in"
	case screenReports:
		return "Reports"
	case screenDetail:
		return "Report"
	case screenForm:
		return "New report"
	case screenAdmin:
		return "Administration"
	case screenDashboard:
		return "Dashboard"
	}
	return ""
}

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators the TUI drives. Client is required; the rest
// may be nil, which disables the matching feature.
type Deps struct {
	Config     *config.Config
	ConfigPath string // watched for live reload when set
	Client     *api.Client
	Store      *auth.Store
	Drafts     *storage.DraftStore
	Audit      *audit.Logger
	Clock      session.Clock
}

// Model is the root Bubble Tea model.
type Model struct {
	deps  Deps
	cfg   *config.Config
	keys  KeyMap
	theme *styles.Theme
	rt    *runtime

	width  int
	height int
	screen screen

	sess     *session.Session
	ctrl     *session.Controller
	surface  *session.InputSurface
	teardown *auth.Teardown
	autosave *session.AutoSave

	header    *components.Header
	statusBar *components.StatusBar
	overlay   components.TimeoutOverlay
	notices   *components.Notices
	spinner   components.Spinner
	ticking   bool

	catalog   *catalog.Catalog
	login     loginScreen
	reports   reportsScreen
	form      formScreen
	admin     adminScreen
	dashboard dashboardScreen
}

// New creates the root model.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Client == nil {
		deps.Client = api.New(cfg.API.BaseURL)
	}
	if deps.Clock == nil {
		deps.Clock = session.RealClock{}
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	rt := &runtime{drafts: deps.Drafts}
	autosave := session.NewAutoSave(deps.Clock, cfg.AutosaveInterval(), rt.saveDraft)

	td := auth.NewTeardown(deps.Store, deps.Client, deps.Audit)
	td.Before(func() error {
		err := autosave.Flush()
		rt.clearDraft()
		return err
	})

	header := components.NewHeader(theme)
	header.Detail = apiHost(cfg.API.BaseURL)

	m := Model{
		deps:      deps,
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		theme:     theme,
		rt:        rt,
		screen:    screenLogin,
		surface:   session.NewInputSurface(),
		teardown:  td,
		autosave:  autosave,
		header:    header,
		statusBar: components.NewStatusBar(theme),
		overlay:   components.NewTimeoutOverlay(),
		notices:   components.NewNotices(),
		spinner:   components.NewSpinner(),
		login:     newLoginScreen(),
		reports:   newReportsScreen(theme),
		form:      newFormScreen(),
		admin:     newAdminScreen(theme),
		dashboard: newDashboardScreen(theme, cfg.Dashboard.ChartURLs),
	}
	m.resize(80, 24)
	return m
}

// Init restores a saved login and starts the autosave poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.login.focusCmd(), restoreCmd(m.deps.Store), autosaveTickCmd())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.ForceQ) {
		return m.quit()
	}

	// Every input is session activity. While the warning or the expiry
	// notice is up, the input goes to the overlay only.
	if m.handleSessionInput(msg) {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case session.ViewMsg:
		m.syncOverlay()
		return m, nil

	case session.TimeoutMsg:
		return m.handleTimeout(msg)

	case configReloadedMsg:
		return m.handleConfigReload(msg)

	case components.NoticeTickMsg:
		if m.notices.Prune() {
			return m, components.NoticeTickCmd()
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case autosaveTickMsg:
		var cmd tea.Cmd
		if m.sess != nil && m.autosave.Due() {
			cmd = checkAutosaveCmd(m.autosave.Check)
		}
		return m, tea.Batch(cmd, autosaveTickCmd())

	case draftSavedMsg:
		if msg.Err != nil {
			return m, m.notify(components.NoticeWarning, "Draft not saved: "+msg.Err.Error())
		}
		if m.sess != nil && m.deps.Audit != nil {
			_ = m.deps.Audit.LogEvent(m.sess.ID(), m.sess.Username(), audit.EventDraftAutosaved, nil)
		}
		return m, nil

	case restoredMsg:
		return m.handleRestored(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case reportsLoadedMsg:
		return m.handleReportsLoaded(msg)

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case reportDeletedMsg:
		return m.handleReportDeleted(msg)

	case exportDoneMsg:
		return m.handleExportDone(msg)

	case reportSubmittedMsg:
		return m.handleReportSubmitted(msg)

	case draftLoadedMsg:
		return m.handleDraftLoaded(msg)

	case catalogChangedMsg:
		return m.handleCatalogChanged(msg)

	case userRegisteredMsg:
		return m.handleUserRegistered(msg)
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenReports, screenDetail:
		return m.updateReports(msg)
	case screenForm:
		return m.updateForm(msg)
	case screenAdmin:
		return m.updateAdmin(msg)
	case screenDashboard:
		return m.updateDashboard(msg)
	}
	return m, nil
}

// View renders the model.
func (m Model) View() string {
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenReports:
		body = m.viewReports()
	case screenDetail:
		body = m.viewDetail()
	case screenForm:
		body = m.viewForm()
	case screenAdmin:
		body = m.viewAdmin()
	case screenDashboard:
		body = m.viewDashboard()
	}

	m.header.Screen = m.screen.String()
	m.statusBar.Hints = m.screenHints()
	m.statusBar.Busy = ""
	if m.spinner.IsActive() {
		m.statusBar.Busy = m.spinner.Message()
	}

	top := m.header.View()
	bottom := m.statusBar.View()
	notices := components.RenderNotices(m.notices.Items(), m.width)

	bodyHeight := m.height - lipgloss.Height(top) - lipgloss.Height(bottom)
	if notices != "" {
		bodyHeight -= lipgloss.Height(notices)
	}
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.theme.App.Render(body))

	parts := []string{top, body}
	if notices != "" {
		parts = append(parts, notices)
	}
	parts = append(parts, bottom)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.overlay.SetSize(width, height)

	rows := height - 8
	m.reports.resize(width-2, rows)
	m.admin.resize(width-2, rows-2)
	m.form.resize(width - 2)
}

// notify pushes a notice and makes sure the expiry tick is running.
func (m *Model) notify(kind components.NoticeKind, text string) tea.Cmd {
	m.notices.Push(kind, text)
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.NoticeTickCmd()
}

// notifyErr reports err, tearing the session down when the server no longer
// accepts the credential.
func (m *Model) notifyErr(prefix string, err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) && m.sess != nil {
		cmd := m.logout()
		return tea.Batch(cmd, m.notify(components.NoticeError, api.MessageOf(err)))
	}
	return m.notify(components.NoticeError, prefix+api.MessageOf(err))
}

func (m *Model) startSpinner(label string) tea.Cmd {
	return m.spinner.Start(label)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.shutdown()
	return m, tea.Quit
}

// shutdown flushes the draft and stops the session timers. The saved
// credential is kept so the next start can resume.
func (m *Model) shutdown() {
	if m.sess != nil {
		_ = m.autosave.Flush()
	}
	if m.ctrl != nil {
		m.ctrl.Dispose()
	}
}

func (m Model) screenHints() []components.KeyHint {
	k := m.keys
	switch m.screen {
	case screenLogin:
		return hints(k.Next, k.Select, k.ForceQ)
	case screenReports:
		if m.reports.confirmDelete {
			return hints(k.Confirm, k.Cancel)
		}
		bs := []key.Binding{k.Select, k.New, k.Delete, k.Export, k.Refresh, k.Dashboard}
		if m.isAdmin() {
			bs = append(bs, k.Admin)
		}
		return hints(append(bs, k.Logout, k.Quit)...)
	case screenDetail:
		return hints(k.Up, k.Down, k.Back)
	case screenForm:
		return hints(k.FieldNext, k.Left, k.AddRow, k.RemoveRow, k.NextRow, k.Submit, k.Back)
	case screenAdmin:
		if m.admin.confirmDelete {
			return hints(k.Confirm, k.Cancel)
		}
		return hints(k.Next, k.New, k.Delete, k.Back)
	case screenDashboard:
		return hints(k.Up, k.Down, k.Back)
	}
	return nil
}

func (m Model) isAdmin() bool {
	return m.sess != nil && m.sess.IsAdmin()
}

func (m Model) username() string {
	if m.sess == nil {
		return ""
	}
	return m.sess.Username()
}

func apiHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	return u.Host
}
