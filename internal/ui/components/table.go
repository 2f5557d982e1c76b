// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// =============================================================================
// TABLE
// =============================================================================

// Column describes one table column. A zero Width column takes whatever room
// the fixed columns leave.
type Column struct {
	Title string
	Width int
}

// Table is a scrollable, single-selection table of text cells.
type Table struct {
	theme   *styles.Theme
	columns []Column
	rows    [][]string

	cursor int
	offset int
	width  int
	height int // visible body rows
	empty  string
}

// NewTable creates a table with the given columns.
func NewTable(theme *styles.Theme, columns ...Column) *Table {
	return &Table{
		theme:   theme,
		columns: columns,
		height:  10,
		empty:   "Nothing to show",
	}
}

// SetSize sets the total width and the number of visible body rows.
func (t *Table) SetSize(width, rows int) {
	t.width = width
	if rows < 1 {
		rows = 1
	}
	t.height = rows
	t.clamp()
}

// SetEmptyText sets the placeholder shown with no rows.
func (t *Table) SetEmptyText(s string) {
	t.empty = s
}

// SetRows replaces the table body, keeping the cursor in range.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	t.clamp()
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Cursor returns the selected row index, -1 when empty.
func (t *Table) Cursor() int {
	if len(t.rows) == 0 {
		return -1
	}
	return t.cursor
}

// SetCursor selects row i.
func (t *Table) SetCursor(i int) {
	t.cursor = i
	t.clamp()
}

// MoveUp moves the selection up by n rows.
func (t *Table) MoveUp(n int) {
	t.cursor -= n
	t.clamp()
}

// MoveDown moves the selection down by n rows.
func (t *Table) MoveDown(n int) {
	t.cursor += n
	t.clamp()
}

// PageSize returns the number of visible body rows.
func (t *Table) PageSize() int {
	return t.height
}

func (t *Table) clamp() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// widths resolves flexible columns against the table width.
func (t *Table) widths() []int {
	out := make([]int, len(t.columns))
	fixed, flex := 0, 0
	for i, c := range t.columns {
		out[i] = c.Width
		if c.Width == 0 {
			flex++
		}
		fixed += c.Width
	}
	gaps := len(t.columns) - 1
	if flex > 0 {
		room := t.width - fixed - gaps - 2
		each := room / flex
		if each < 8 {
			each = 8
		}
		for i := range out {
			if out[i] == 0 {
				out[i] = each
			}
		}
	}
	return out
}

func (t *Table) renderLine(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "\n", " ")
		}
		parts[i] = util.PadRight(util.TruncateWidth(cell, w), w)
	}
	return " " + strings.Join(parts, " ") + " "
}

// View renders the header and the visible window of rows.
func (t *Table) View() string {
	widths := t.widths()

	var b strings.Builder
	titles := make([]string, len(t.columns))
	for i, c := range t.columns {
		titles[i] = c.Title
	}
	b.WriteString(t.theme.TableHeader.Render(t.renderLine(titles, widths)))

	if len(t.rows) == 0 {
		b.WriteString("\n")
		b.WriteString(t.theme.Muted.Render(" " + t.empty))
		return b.String()
	}

	end := t.offset + t.height
	if end > len(t.rows) {
		end = len(t.rows)
	}
	for i := t.offset; i < end; i++ {
		b.WriteString("\n")
		line := t.renderLine(t.rows[i], widths)
		if i == t.cursor {
			b.WriteString(t.theme.TableSelected.Render(line))
		} else {
			b.WriteString(t.theme.TableRow.Render(line))
		}
	}

	if len(t.rows) > t.height {
		b.WriteString("\n")
		b.WriteString(t.theme.Muted.Render(" " + strconv.Itoa(t.cursor+1) + "/" + strconv.Itoa(len(t.rows))))
	}
	return b.String()
}
