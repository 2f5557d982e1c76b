// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
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
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// Shifts offered in the form.
var shifts = []string{"Día", "Noche"}

// maxMatches is how many worker search results are listed.
const maxMatches = 5

// =============================================================================
// FIELDS
// =============================================================================

type fieldKind int

const (
	kindText fieldKind = iota
	kindChoice
	kindWorker
)

type option struct {
	Value string
	Label string
}

// field is one form control. Choice fields keep a value that is not among
// their options in raw, so a restored draft survives a missing catalog.
type field struct {
	label   string
	kind    fieldKind
	input   textinput.Model
	options []option
	index   int
	raw     string
}

func newTextField(label, placeholder string, limit int) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return field{label: label, kind: kindText, input: in, index: -1}
}

func newChoiceField(label string, opts []option) field {
	return field{label: label, kind: kindChoice, options: opts, index: -1}
}

func (f *field) value() string {
	switch f.kind {
	case kindChoice:
		if f.index >= 0 && f.index < len(f.options) {
			return f.options[f.index].Value
		}
		return f.raw
	default:
		return f.input.Value()
	}
}

func (f *field) setValue(v string) {
	if f.kind != kindChoice {
		f.input.SetValue(v)
		return
	}
	f.index, f.raw = -1, ""
	for i, o := range f.options {
		if o.Value == v {
			f.index = i
			return
		}
	}
	f.raw = v
}

// cycle moves through the options; one step past either end is "none".
func (f *field) cycle(delta int) {
	n := len(f.options) + 1
	pos := (f.index + 1 + delta) % n
	if pos < 0 {
		pos += n
	}
	f.index = pos - 1
	f.raw = ""
}

func (f *field) setOptions(opts []option) {
	v := f.value()
	f.options = opts
	f.setValue(v)
}

func (f *field) display() string {
	switch f.kind {
	case kindChoice:
		label := "select"
		switch {
		case f.index >= 0 && f.index < len(f.options):
			label = f.options[f.index].Label
		case f.raw != "":
			label = f.raw
		}
		return "< " + label + " >"
	default:
		return f.input.View()
	}
}

// =============================================================================
// FORM SCREEN
// =============================================================================

const (
	fArea = iota
	fShift
	fSupervisor
	fWorker
	fPosition
	fEquipment
	fSegment
	fActivity
	fStart
	fEnd
	fAttendance
	fProgress
	fInterferences
	fStoppages
	fComments
	fieldCount
)

type formScreen struct {
	draft  model.Draft
	row    int
	focus  int
	fields [fieldCount]field

	matches []catalog.Entry
	match   int

	err        string
	submitting bool
	loaded     bool
	width      int
}

func newFormScreen() formScreen {
	f := formScreen{draft: model.NewDraft()}

	shiftOpts := make([]option, len(shifts))
	for i, s := range shifts {
		shiftOpts[i] = option{Value: s, Label: s}
	}
	attendance := make([]option, len(model.AttendanceCodes))
	for i, code := range model.AttendanceCodes {
		attendance[i] = option{Value: string(code), Label: string(code)}
	}

	f.fields[fArea] = newTextField("Area", "work area", 80)
	f.fields[fShift] = newChoiceField("Shift", shiftOpts)
	f.fields[fSupervisor] = newChoiceField("Supervisor", nil)
	f.fields[fWorker] = newTextField("Worker", "search by name or RUT", 80)
	f.fields[fWorker].kind = kindWorker
	f.fields[fPosition] = newTextField("Position", "", 60)
	f.fields[fEquipment] = newTextField("Equipment", "equipment code", 30)
	f.fields[fSegment] = newChoiceField("Segment", nil)
	f.fields[fActivity] = newChoiceField("Activity", nil)
	f.fields[fStart] = newTextField("Start", "HH:MM", 5)
	f.fields[fEnd] = newTextField("End", "HH:MM", 5)
	f.fields[fAttendance] = newChoiceField("Attendance", attendance)
	f.fields[fProgress] = newTextField("Progress", "work completed", 500)
	f.fields[fInterferences] = newTextField("Interferences", "", 500)
	f.fields[fStoppages] = newTextField("Stoppages", "", 500)
	f.fields[fComments] = newTextField("Comments", "", 500)

	f.loadFields()
	f.focusField(fArea)
	return f
}

func (f *formScreen) resize(width int) {
	f.width = width
	w := width - 20
	if w < 20 {
		w = 20
	}
	for i := range f.fields {
		f.fields[i].input.Width = w
	}
}

// setCatalog refreshes the catalog-backed options, keeping current values.
func (f *formScreen) setCatalog(cat *catalog.Catalog) {
	entryOpts := func(entries []catalog.Entry, byName bool) []option {
		out := make([]option, len(entries))
		for i, e := range entries {
			v := e.ID
			if byName {
				v = e.Name
			}
			out[i] = option{Value: v, Label: e.Name}
		}
		return out
	}
	f.fields[fSupervisor].setOptions(entryOpts(cat.List(catalog.KindSupervisors), true))
	f.fields[fSegment].setOptions(entryOpts(cat.List(catalog.KindSegments), false))
	f.fields[fActivity].setOptions(entryOpts(cat.List(catalog.KindActivities), false))
}

// load replaces the draft being edited.
func (f *formScreen) load(d model.Draft) {
	f.draft = cloneDraft(d)
	if len(f.draft.Team) == 0 {
		f.draft.AddRow()
	}
	f.row = 0
	f.err = ""
	f.loadFields()
}

func (f *formScreen) loadFields() {
	d := f.draft
	f.fields[fArea].setValue(d.Area)
	f.fields[fShift].setValue(d.Shift)
	f.fields[fSupervisor].setValue(d.Supervisor)
	f.fields[fProgress].setValue(d.Progress)
	f.fields[fInterferences].setValue(d.Interferences)
	f.fields[fStoppages].setValue(d.Stoppages)
	f.fields[fComments].setValue(d.Comments)
	f.loadRow()
}

func (f *formScreen) loadRow() {
	r := f.draft.Team[f.row]
	f.fields[fWorker].setValue(r.Name)
	f.fields[fPosition].setValue(r.Position)
	f.fields[fEquipment].setValue(r.EquipmentCode)
	f.fields[fSegment].setValue(r.SegmentID)
	f.fields[fActivity].setValue(r.ActivityID)
	f.fields[fStart].setValue(r.StartTime)
	f.fields[fEnd].setValue(r.EndTime)
	f.fields[fAttendance].setValue(string(r.Attendance))
	f.matches, f.match = nil, 0
}

// store copies the controls back into the draft. The worker identity only
// changes through pickWorker.
func (f *formScreen) store() {
	d := &f.draft
	d.Area = f.fields[fArea].value()
	d.Shift = f.fields[fShift].value()
	d.Supervisor = f.fields[fSupervisor].value()
	d.Progress = f.fields[fProgress].value()
	d.Interferences = f.fields[fInterferences].value()
	d.Stoppages = f.fields[fStoppages].value()
	d.Comments = f.fields[fComments].value()

	r := &d.Team[f.row]
	r.Position = strings.TrimSpace(f.fields[fPosition].value())
	r.EquipmentCode = strings.TrimSpace(f.fields[fEquipment].value())
	if seg := f.fields[fSegment].value(); seg != r.SegmentID {
		r.SegmentID = seg
		r.Segment = ""
	}
	if act := f.fields[fActivity].value(); act != r.ActivityID {
		r.ActivityID = act
		r.Activity = ""
	}
	r.StartTime = strings.TrimSpace(f.fields[fStart].value())
	r.EndTime = strings.TrimSpace(f.fields[fEnd].value())
	r.Attendance = model.Attendance(f.fields[fAttendance].value())
}

func (f *formScreen) focusField(i int) tea.Cmd {
	i %= fieldCount
	if i < 0 {
		i += fieldCount
	}
	f.focus = i
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	if f.fields[i].kind != kindChoice {
		f.fields[i].input.Focus()
		return textinput.Blink
	}
	return nil
}

func (f *formScreen) switchRow(i int) {
	if i < 0 || i >= len(f.draft.Team) || i == f.row {
		return
	}
	f.store()
	f.row = i
	f.loadRow()
}

func (f *formScreen) addRow() {
	f.store()
	f.draft.AddRow()
	f.row = len(f.draft.Team) - 1
	f.loadRow()
}

func (f *formScreen) removeRow() {
	if len(f.draft.Team) <= 1 {
		return
	}
	f.draft.RemoveRow(f.row)
	if f.row >= len(f.draft.Team) {
		f.row = len(f.draft.Team) - 1
	}
	f.loadRow()
}

func (f *formScreen) searchWorkers(cat *catalog.Catalog) {
	f.matches, f.match = nil, 0
	q := strings.TrimSpace(f.fields[fWorker].input.Value())
	if cat == nil || q == "" {
		return
	}
	found := cat.SearchWorkers(q)
	if len(found) > maxMatches {
		found = found[:maxMatches]
	}
	f.matches = found
}

// pickWorker fills the current row from the selected search result.
func (f *formScreen) pickWorker() bool {
	if f.match < 0 || f.match >= len(f.matches) {
		return false
	}
	w := f.matches[f.match]
	r := &f.draft.Team[f.row]
	r.WorkerID = w.ID
	r.Name = w.Name
	r.RUT = w.RUT
	r.Position = w.Position
	f.fields[fWorker].setValue(w.Name)
	f.fields[fPosition].setValue(w.Position)
	f.matches, f.match = nil, 0
	return true
}

// =============================================================================
// UPDATE
// =============================================================================

// enterForm shows the form and, once per session, restores a saved draft.
func (m *Model) enterForm() tea.Cmd {
	m.screen = screenForm
	cmd := m.form.focusField(m.form.focus)
	if m.form.loaded {
		return cmd
	}
	m.form.loaded = true
	return tea.Batch(cmd, loadDraftCmd(m.deps.Drafts, m.username()))
}

func (m Model) handleDraftLoaded(msg draftLoadedMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.notify(components.NoticeWarning, "Saved draft not loaded: "+msg.Err.Error())
	}
	if !msg.Found || msg.Draft.IsBlank() || !m.form.draft.IsBlank() {
		return m, nil
	}
	m.form.load(msg.Draft)
	m.rt.setDraft(m.username(), m.form.draft)
	return m, m.notify(components.NoticeInfo,
		"Restored the draft saved "+msg.SavedAt.Local().Format("2006-01-02 15:04"))
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		return m, m.notifyErr("Catalogs not loaded: ", msg.Err)
	}
	if m.spinner.Message() == "Loading catalogs" {
		m.spinner.Stop()
	}
	m.catalog = msg.Catalog
	m.form.setCatalog(msg.Catalog)
	m.admin.refresh(msg.Catalog)
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := &m.form
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		fld := &f.fields[f.focus]
		if fld.kind != kindChoice {
			fld.input, cmd = fld.input.Update(msg)
		}
		return m, cmd
	}
	if f.submitting {
		return m, nil
	}

	k := m.keys
	fld := &f.fields[f.focus]
	switch {
	case key.Matches(km, k.Back):
		f.store()
		m.screen = screenReports
		if m.autosave.IsDirty() {
			return m, checkAutosaveCmd(func() (bool, error) { return true, m.autosave.Flush() })
		}
		return m, nil

	case key.Matches(km, k.Submit):
		return m.submitForm()

	case key.Matches(km, k.AddRow):
		f.addRow()
		m.markDirty()
		return m, f.focusField(fWorker)

	case key.Matches(km, k.RemoveRow):
		f.removeRow()
		m.markDirty()
		return m, nil

	case key.Matches(km, k.NextRow):
		f.switchRow(f.row + 1)
		return m, nil

	case key.Matches(km, k.PrevRow):
		f.switchRow(f.row - 1)
		return m, nil

	case key.Matches(km, k.FieldNext):
		return m, f.focusField(f.focus + 1)

	case key.Matches(km, k.FieldPrev):
		return m, f.focusField(f.focus - 1)

	case fld.kind == kindChoice && (key.Matches(km, k.Left) || key.Matches(km, k.Right)):
		delta := 1
		if key.Matches(km, k.Left) {
			delta = -1
		}
		fld.cycle(delta)
		f.store()
		m.markDirty()
		return m, nil

	case fld.kind == kindWorker && len(f.matches) > 0 && (key.Matches(km, k.Left) || key.Matches(km, k.Right)):
		if key.Matches(km, k.Left) {
			f.match = (f.match + len(f.matches) - 1) % len(f.matches)
		} else {
			f.match = (f.match + 1) % len(f.matches)
		}
		return m, nil

	case key.Matches(km, k.Select):
		if fld.kind == kindWorker && f.pickWorker() {
			f.store()
			m.markDirty()
		}
		return m, f.focusField(f.focus + 1)
	}

	if fld.kind == kindChoice {
		return m, nil
	}
	var cmd tea.Cmd
	fld.input, cmd = fld.input.Update(km)
	if fld.kind == kindWorker {
		f.searchWorkers(m.catalog)
		return m, cmd
	}
	f.store()
	f.err = ""
	m.markDirty()
	return m, cmd
}

// markDirty hands the current draft to the autosave.
func (m *Model) markDirty() {
	if m.sess == nil {
		return
	}
	m.rt.setDraft(m.sess.Username(), m.form.draft)
	m.autosave.MarkDirty()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := &m.form
	f.store()

	var names model.Resolver
	if m.catalog != nil {
		names = m.catalog
	}
	report, err := f.draft.Build(names)
	if err != nil {
		f.err = formError(err)
		return m, nil
	}
	f.err = ""
	f.submitting = true
	return m, tea.Batch(m.startSpinner("Submitting"), submitReportCmd(m.deps.Client, report))
}

func (m Model) handleReportSubmitted(msg reportSubmittedMsg) (tea.Model, tea.Cmd) {
	m.form.submitting = false
	m.spinner.Stop()
	if m.sess == nil {
		return m, nil
	}
	if msg.Err != nil {
		m.form.err = api.MessageOf(msg.Err)
		return m, m.notifyErr("Report not submitted: ", msg.Err)
	}

	if m.deps.Audit != nil {
		_ = m.deps.Audit.LogEvent(m.sess.ID(), m.sess.Username(), audit.EventReportSubmitted, map[string]string{
			"id":      msg.Report.ID,
			"area":    msg.Report.Area,
			"members": strconv.Itoa(msg.Report.MemberCount()),
		})
	}

	user := m.sess.Username()
	m.autosave.MarkClean()
	m.rt.clearDraft()
	m.form.load(model.NewDraft())
	m.form.focusField(fArea)

	return m, tea.Batch(
		deleteDraftCmd(m.deps.Drafts, user),
		m.notify(components.NoticeSuccess, "Report submitted"),
		m.enterReports(),
	)
}

func formError(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingHeader):
		return "Area, shift and supervisor are required"
	case errors.Is(err, model.ErrEmptyTeam):
		return "Add at least one crew member"
	}
	return err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) viewForm() string {
	f := m.form
	t := m.theme

	var lines []string
	focusLine := 0

	add := func(i int) {
		fld := f.fields[i]
		label := t.Label.Render(util.PadRight(fld.label, 14))
		line := label + fld.display()
		style := t.BlurredField
		if i == f.focus {
			style = t.FocusedField
			focusLine = len(lines)
		}
		lines = append(lines, style.Render(line))
	}
	section := func(title string) {
		lines = append(lines, "", t.Warning.Render(title))
	}

	lines = append(lines, t.Title.UnsetMarginBottom().Render("New shift report"))
	add(fArea)
	add(fShift)
	add(fSupervisor)

	section("Crew member " + strconv.Itoa(f.row+1) + " of " + strconv.Itoa(len(f.draft.Team)))
	row := f.draft.Team[f.row]
	add(fWorker)
	if len(f.matches) > 0 && f.focus == fWorker {
		for i, w := range f.matches {
			text := "   " + w.Name + "  " + w.RUT
			if i == f.match {
				lines = append(lines, t.TableSelected.Render(text))
			} else {
				lines = append(lines, t.Muted.Render(text))
			}
		}
	}
	if row.RUT != "" {
		lines = append(lines, t.Muted.Render(util.PadRight("", 16)+"RUT "+row.RUT))
	}
	add(fPosition)
	add(fEquipment)
	add(fSegment)
	add(fActivity)
	add(fStart)
	add(fEnd)
	if hours := row.Hours(); hours != "" {
		lines = append(lines, t.Muted.Render(util.PadRight("", 16)+"Worked "+hours))
	}
	add(fAttendance)
	if code := model.Attendance(f.fields[fAttendance].value()); code.Valid() {
		lines = append(lines, t.Muted.Render(util.PadRight("", 16)+code.Definition()))
	}

	if len(f.draft.Team) > 1 {
		section("Roster")
		for i, r := range f.draft.Team {
			name := r.Name
			if name == "" {
				name = "(empty)"
			}
			text := util.PadRight(strconv.Itoa(i+1)+".", 4) + util.PadRight(util.TruncateWidth(name, 28), 29) +
				util.PadRight(string(r.Attendance), 4) + r.Hours()
			if i == f.row {
				lines = append(lines, t.Value.Render("> "+text))
			} else {
				lines = append(lines, t.Muted.Render("  "+text))
			}
		}
	}

	section("Notes")
	add(fProgress)
	add(fInterferences)
	add(fStoppages)
	add(fComments)

	switch {
	case f.submitting:
		lines = append(lines, "", m.spinner.View())
	case f.err != "":
		lines = append(lines, "", t.Error.Render(f.err))
	}

	return strings.Join(scrollWindow(lines, focusLine, m.height-4), "\n")
}

// scrollWindow returns at most height lines keeping line focus visible.
func scrollWindow(lines []string, focus, height int) []string {
	if height < 1 || len(lines) <= height {
		return lines
	}
	start := focus - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
