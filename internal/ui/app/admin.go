// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/api"
	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// usersTab follows the catalog tabs.
var usersTab = len(catalog.Kinds)

// =============================================================================
// ADMIN SCREEN
// =============================================================================

type adminScreen struct {
	tab   int
	table *components.Table
	items []catalog.Entry

	// Add / register form.
	adding   bool
	labels   []string
	inputs   []textinput.Model
	focus    int
	regAdmin bool
	busy     bool

	confirmDelete bool
	err           string
}

func newAdminScreen(theme *styles.Theme) adminScreen {
	table := components.NewTable(theme,
		components.Column{Title: "Name"},
		components.Column{Title: "RUT", Width: 12},
		components.Column{Title: "Position", Width: 20},
	)
	table.SetEmptyText("No entries. Press n to add one.")
	return adminScreen{table: table}
}

func (a *adminScreen) resize(width, rows int) {
	a.table.SetSize(width, rows)
}

func (a *adminScreen) reset() {
	a.tab = 0
	a.items = nil
	a.closeForm()
	a.confirmDelete = false
	a.table.SetRows(nil)
}

func (a *adminScreen) kind() (catalog.Kind, bool) {
	if a.tab < 0 || a.tab >= len(catalog.Kinds) {
		return "", false
	}
	return catalog.Kinds[a.tab], true
}

// refresh reloads the table from cat for the current tab.
func (a *adminScreen) refresh(cat *catalog.Catalog) {
	kind, ok := a.kind()
	if !ok || cat == nil {
		a.items = nil
		a.table.SetRows(nil)
		return
	}
	a.items = append([]catalog.Entry(nil), cat.List(kind)...)
	rows := make([][]string, len(a.items))
	for i, e := range a.items {
		rows[i] = []string{e.Name, e.RUT, e.Position}
	}
	a.table.SetRows(rows)
}

func (a *adminScreen) selected() (catalog.Entry, bool) {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.items) {
		return catalog.Entry{}, false
	}
	return a.items[i], true
}

// openForm builds the inputs for the current tab.
// openForm shows the add form for the current tab. Known positions are
// offered as the placeholder on the workers tab.
func (a *adminScreen) openForm(cat *catalog.Catalog) tea.Cmd {
	switch kind, ok := a.kind(); {
	case !ok:
		a.labels = []string{"Username", "Password"}
	case kind == catalog.KindWorkers:
		a.labels = []string{"Name", "RUT", "Position"}
	case kind.HasPerson():
		a.labels = []string{"Name", "RUT"}
	default:
		a.labels = []string{"Name"}
	}
	a.inputs = make([]textinput.Model, len(a.labels))
	for i := range a.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 80
		in.Width = 40
		a.inputs[i] = in
	}
	if kind, ok := a.kind(); ok && kind == catalog.KindWorkers && cat != nil {
		if positions := cat.Positions(); len(positions) > 0 {
			a.inputs[2].Placeholder = util.TruncateWidth(strings.Join(positions, ", "), 40)
		}
	}
	if a.tab == usersTab {
		a.inputs[1].EchoMode = textinput.EchoPassword
		a.inputs[1].EchoCharacter = '*'
		a.regAdmin = false
	}
	a.adding = true
	a.err = ""
	return a.setFocus(0)
}

func (a *adminScreen) closeForm() {
	a.adding = false
	a.busy = false
	a.inputs = nil
	a.labels = nil
	a.err = ""
}

// setFocus focuses field i; on the users tab the role toggle is the last
// stop and has no input.
func (a *adminScreen) setFocus(i int) tea.Cmd {
	stops := len(a.inputs)
	if a.tab == usersTab {
		stops++
	}
	i %= stops
	if i < 0 {
		i += stops
	}
	a.focus = i
	for j := range a.inputs {
		a.inputs[j].Blur()
	}
	if i < len(a.inputs) {
		a.inputs[i].Focus()
		return textinput.Blink
	}
	return nil
}

func (a *adminScreen) value(i int) string {
	if i >= len(a.inputs) {
		return ""
	}
	return strings.TrimSpace(a.inputs[i].Value())
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *Model) enterAdmin() tea.Cmd {
	m.screen = screenAdmin
	m.admin.refresh(m.catalog)
	if m.catalog == nil {
		return loadCatalogCmd(m.deps.Client)
	}
	return nil
}

func (m Model) updateAdmin(msg tea.Msg) (tea.Model, tea.Cmd) {
	a := &m.admin
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		if a.adding && a.focus < len(a.inputs) {
			var cmd tea.Cmd
			a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if a.adding {
		return m.updateAdminForm(km)
	}

	k := m.keys
	if a.confirmDelete {
		a.confirmDelete = false
		if key.Matches(km, k.Confirm) {
			kind, ok := a.kind()
			if e, found := a.selected(); ok && found {
				return m, tea.Batch(m.startSpinner("Deleting"), deleteEntryCmd(m.deps.Client, kind, e))
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(km, k.Next):
		a.tab = (a.tab + 1) % (usersTab + 1)
		a.refresh(m.catalog)
	case key.Matches(km, k.Prev):
		a.tab = (a.tab + usersTab) % (usersTab + 1)
		a.refresh(m.catalog)
	case key.Matches(km, k.Up):
		a.table.MoveUp(1)
	case key.Matches(km, k.Down):
		a.table.MoveDown(1)
	case key.Matches(km, k.PageUp):
		a.table.MoveUp(a.table.PageSize())
	case key.Matches(km, k.PageDown):
		a.table.MoveDown(a.table.PageSize())
	case key.Matches(km, k.New):
		return m, a.openForm(m.catalog)
	case key.Matches(km, k.Delete):
		if _, ok := a.selected(); ok {
			a.confirmDelete = true
		}
	case key.Matches(km, k.Refresh):
		return m, tea.Batch(m.startSpinner("Loading catalogs"), loadCatalogCmd(m.deps.Client))
	case key.Matches(km, k.Back), key.Matches(km, k.Quit):
		return m, m.enterReports()
	}
	return m, nil
}

func (m Model) updateAdminForm(km tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.admin
	k := m.keys
	if a.busy {
		return m, nil
	}

	onToggle := a.tab == usersTab && a.focus == len(a.inputs)
	switch {
	case key.Matches(km, k.Back):
		a.closeForm()
		return m, nil
	case key.Matches(km, k.FieldNext):
		return m, a.setFocus(a.focus + 1)
	case key.Matches(km, k.FieldPrev):
		return m, a.setFocus(a.focus - 1)
	case onToggle && (key.Matches(km, k.Left) || key.Matches(km, k.Right) || km.String() == " "):
		a.regAdmin = !a.regAdmin
		return m, nil
	case key.Matches(km, k.Select):
		return m.submitAdminForm()
	}

	if a.focus < len(a.inputs) {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(km)
		a.err = ""
		return m, cmd
	}
	return m, nil
}

func (m Model) submitAdminForm() (tea.Model, tea.Cmd) {
	a := &m.admin

	kind, ok := a.kind()
	if !ok {
		user, pass := a.value(0), a.value(1)
		if user == "" || pass == "" {
			a.err = "Username and password are required"
			return m, nil
		}
		role := model.RoleUser
		if a.regAdmin {
			role = model.RoleAdmin
		}
		a.busy = true
		return m, tea.Batch(m.startSpinner("Registering"), registerCmd(m.deps.Client, user, pass, role))
	}

	entry := catalog.Entry{Name: a.value(0), RUT: a.value(1), Position: a.value(2)}
	if err := entry.Validate(kind); err != nil {
		a.err = err.Error()
		return m, nil
	}
	a.busy = true
	return m, tea.Batch(m.startSpinner("Saving"), createEntryCmd(m.deps.Client, kind, entry))
}

func (m Model) handleCatalogChanged(msg catalogChangedMsg) (tea.Model, tea.Cmd) {
	m.spinner.Stop()
	m.admin.busy = false
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		m.admin.err = api.MessageOf(msg.Err)
		return m, m.notifyErr("Catalog not updated: ", msg.Err)
	}

	// Copy on write: running export commands may still read the old catalog.
	next := catalog.Catalog{}
	if m.catalog != nil {
		next = *m.catalog
	}
	entries := append([]catalog.Entry(nil), next.List(msg.Kind)...)
	action := "add"
	if msg.Deleted {
		action = "delete"
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != msg.Entry.ID {
				kept = append(kept, e)
			}
		}
		entries = kept
	} else {
		entries = append(entries, msg.Entry)
	}
	next.Set(msg.Kind, entries)
	m.catalog = &next
	m.form.setCatalog(m.catalog)
	m.admin.refresh(m.catalog)
	if !msg.Deleted {
		m.admin.closeForm()
	}

	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sess.ID(), m.sess.Username(), audit.EventCatalogChanged, map[string]string{
			"catalog": string(msg.Kind),
			"action":  action,
			"name":    msg.Entry.Name,
		})
	}

	text := msg.Kind.Label() + ": added " + msg.Entry.Name
	if msg.Deleted {
		text = msg.Kind.Label() + ": deleted " + msg.Entry.Name
	}
	return m, m.notify(components.NoticeSuccess, text)
}

func (m Model) handleUserRegistered(msg userRegisteredMsg) (tea.Model, tea.Cmd) {
	m.spinner.Stop()
	m.admin.busy = false
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		m.admin.err = api.MessageOf(msg.Err)
		return m, m.notifyErr("User not registered: ", msg.Err)
	}
	m.admin.closeForm()
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sess.ID(), m.sess.Username(), audit.EventUserRegistered, map[string]string{
			"user": msg.Username,
		})
	}
	return m, m.notify(components.NoticeSuccess, "Registered "+msg.Username)
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewAdmin() string {
	a := m.admin
	t := m.theme

	tabs := make([]string, 0, usersTab+1)
	for i := 0; i <= usersTab; i++ {
		label := "Users"
		if i < usersTab {
			kind := catalog.Kinds[i]
			label = kind.Label()
			if m.catalog != nil {
				label += " " + strconv.Itoa(len(m.catalog.List(kind)))
			}
		}
		if i == a.tab {
			tabs = append(tabs, t.ButtonActive.Render(label))
		} else {
			tabs = append(tabs, t.Button.Render(label))
		}
	}
	out := strings.Join(tabs, " ") + "\n\n"

	switch {
	case a.adding:
		out += m.viewAdminForm()
	case a.tab == usersTab:
		out += t.Muted.Render("Press n to register a user.")
	default:
		out += a.table.View()
		if a.confirmDelete {
			if e, ok := a.selected(); ok {
				out += "\n\n" + t.Warning.Render("Delete "+e.Name+"? (y/n)")
			}
		}
	}
	return out
}

func (m Model) viewAdminForm() string {
	a := m.admin
	t := m.theme

	title := "Register user"
	if kind, ok := a.kind(); ok {
		title = "New " + strings.TrimSuffix(strings.ToLower(kind.Label()), "s")
	}
	lines := []string{t.Subtitle.Render(title)}
	for i, label := range a.labels {
		style := t.BlurredField
		if i == a.focus {
			style = t.FocusedField
		}
		lines = append(lines, style.Render(t.Label.Render(util.PadRight(label, 12))+a.inputs[i].View()))
	}
	if a.tab == usersTab {
		role := "[ ] Administrator"
		if a.regAdmin {
			role = "[x] Administrator"
		}
		style := t.BlurredField
		if a.focus == len(a.inputs) {
			style = t.FocusedField
		}
		lines = append(lines, style.Render(util.PadRight("", 12)+role))
	}
	switch {
	case a.busy:
		lines = append(lines, "", m.spinner.View())
	case a.err != "":
		lines = append(lines, "", t.Error.Render(a.err))
	default:
		lines = append(lines, "", t.Muted.Render("enter to save, esc to cancel"))
	}
	return strings.Join(lines, "\n")
}
