// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/shiftlog-tui/internal/audit"
	"github.com/jeranaias/shiftlog-tui/internal/export"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// REPORTS SCREEN
// =============================================================================

type reportsScreen struct {
	table         *components.Table
	items         []model.Report
	loaded        bool
	confirmDelete bool

	detail   viewport.Model
	detailID string
	width    int
}

func newReportsScreen(theme *styles.Theme) reportsScreen {
	table := components.NewTable(theme,
		components.Column{Title: "Submitted", Width: 16},
		components.Column{Title: "Area"},
		components.Column{Title: "Shift", Width: 8},
		components.Column{Title: "Supervisor"},
		components.Column{Title: "Crew", Width: 4},
		components.Column{Title: "User", Width: 12},
	)
	table.SetEmptyText("No reports yet. Press n to create one.")
	return reportsScreen{table: table, detail: viewport.New(80, 20)}
}

func (r *reportsScreen) resize(width, rows int) {
	r.width = width
	r.table.SetSize(width, rows)
	r.detail.Width = width
	r.detail.Height = rows + 2
}

func (r *reportsScreen) reset() {
	r.items = nil
	r.loaded = false
	r.confirmDelete = false
	r.detailID = ""
	r.table.SetRows(nil)
}

// setItems stores reports newest first and refreshes the table.
func (r *reportsScreen) setItems(reports []model.Report) {
	items := append([]model.Report(nil), reports...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
	})
	r.items = items
	r.loaded = true

	rows := make([][]string, len(items))
	for i, rep := range items {
		submitted := ""
		if !rep.SubmittedAt.IsZero() {
			submitted = rep.SubmittedAt.Local().Format("2006-01-02 15:04")
		}
		rows[i] = []string{
			submitted,
			rep.Area,
			rep.Shift,
			rep.Supervisor,
			strconv.Itoa(rep.MemberCount()),
			rep.Username,
		}
	}
	r.table.SetRows(rows)
}

func (r *reportsScreen) selected() (model.Report, bool) {
	i := r.table.Cursor()
	if i < 0 || i >= len(r.items) {
		return model.Report{}, false
	}
	return r.items[i], true
}

func (r *reportsScreen) remove(id string) {
	kept := r.items[:0:0]
	for _, rep := range r.items {
		if rep.ID != id {
			kept = append(kept, rep)
		}
	}
	r.setItems(kept)
}

// enterReports shows the list and refreshes it, loading the catalogs the
// first time.
func (m *Model) enterReports() tea.Cmd {
	m.screen = screenReports
	cmds := []tea.Cmd{m.startSpinner("Loading reports"), loadReportsCmd(m.deps.Client, m.isAdmin())}
	if m.catalog == nil {
		cmds = append(cmds, loadCatalogCmd(m.deps.Client))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleReportsLoaded(msg reportsLoadedMsg) (tea.Model, tea.Cmd) {
	m.spinner.Stop()
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.notifyErr("Reports not loaded: ", msg.Err)
	}
	m.reports.setItems(msg.Reports)
	return m, nil
}

func (m Model) handleReportDeleted(msg reportDeletedMsg) (tea.Model, tea.Cmd) {
	m.spinner.Stop()
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.notifyErr("Report not deleted: ", msg.Err)
	}
	m.reports.remove(msg.ID)
	if m.screen == screenDetail && m.reports.detailID == msg.ID {
		m.screen = screenReports
	}
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sessionID(), m.username(), audit.EventReportDeleted, map[string]string{"id": msg.ID})
	}
	return m, m.notify(components.NoticeSuccess, "Report deleted")
}

func (m Model) handleExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	m.spinner.Stop()
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.notify(components.NoticeError, "Export failed: "+msg.Err.Error())
	}
	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sessionID(), m.username(), audit.EventExport, map[string]string{
			"path":    msg.Path,
			"reports": strconv.Itoa(msg.Count),
		})
	}
	return m, m.notify(components.NoticeSuccess, "Exported "+strconv.Itoa(msg.Count)+" reports to "+msg.Path)
}

func (m Model) updateReports(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if m.screen == screenDetail {
			return m.updateDetail(km)
		}
		return m.handleReportsKey(km)
	}
	if m.screen == screenDetail {
		var cmd tea.Cmd
		m.reports.detail, cmd = m.reports.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleReportsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := &m.reports
	k := m.keys

	if r.confirmDelete {
		r.confirmDelete = false
		if key.Matches(msg, k.Confirm) {
			if rep, ok := r.selected(); ok {
				return m, tea.Batch(m.startSpinner("Deleting"), deleteReportCmd(m.deps.Client, rep.ID))
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Up):
		r.table.MoveUp(1)
	case key.Matches(msg, k.Down):
		r.table.MoveDown(1)
	case key.Matches(msg, k.PageUp):
		r.table.MoveUp(r.table.PageSize())
	case key.Matches(msg, k.PageDown):
		r.table.MoveDown(r.table.PageSize())
	case key.Matches(msg, k.Select):
		if rep, ok := r.selected(); ok {
			m.openDetail(rep)
		}
	case key.Matches(msg, k.New):
		return m, m.enterForm()
	case key.Matches(msg, k.Delete):
		if _, ok := r.selected(); ok {
			r.confirmDelete = true
		}
	case key.Matches(msg, k.Export):
		if len(r.items) == 0 {
			return m, m.notify(components.NoticeInfo, "Nothing to export")
		}
		return m, tea.Batch(m.startSpinner("Exporting"),
			exportCmd(r.items, m.catalog, m.cfg.Export.Format, m.cfg.Export.Dir))
	case key.Matches(msg, k.Refresh):
		return m, m.enterReports()
	case key.Matches(msg, k.Admin):
		if m.isAdmin() {
			return m, m.enterAdmin()
		}
	case key.Matches(msg, k.Dashboard):
		m.screen = screenDashboard
	case key.Matches(msg, k.Logout):
		return m, tea.Batch(m.logout(), m.notify(components.NoticeInfo, "Signed out"))
	case key.Matches(msg, k.Quit):
		return m.quit()
	}
	return m, nil
}

// =============================================================================
// DETAIL
// =============================================================================

func (m *Model) openDetail(rep model.Report) {
	r := &m.reports
	r.detailID = rep.ID
	r.detail.SetContent(renderMarkdown(export.ReportMarkdown(rep), m.theme.IsDark, r.width-4))
	r.detail.GotoTop()
	m.screen = screenDetail
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.screen = screenReports
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		m.screen = screenReports
		m.reports.confirmDelete = true
		return m, nil
	}
	var cmd tea.Cmd
	m.reports.detail, cmd = m.reports.detail.Update(msg)
	return m, cmd
}

// renderMarkdown renders md for the terminal, falling back to the source
// when glamour cannot.
func renderMarkdown(md string, dark bool, width int) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) viewReports() string {
	r := m.reports
	t := m.theme

	title := "My reports"
	if m.isAdmin() {
		title = "All reports"
	}
	head := t.Title.Render(title)
	if r.loaded {
		head += " " + t.Muted.Render("("+strconv.Itoa(len(r.items))+")")
	}

	body := r.table.View()
	if !r.loaded && m.spinner.IsActive() {
		body = m.spinner.View()
	}

	out := head + "\n" + body
	if r.confirmDelete {
		if rep, ok := r.selected(); ok {
			out += "\n\n" + t.Warning.Render("Delete report "+rep.Title()+"? (y/n)")
		}
	}
	return out
}

func (m Model) viewDetail() string {
	return m.reports.detail.View()
}
