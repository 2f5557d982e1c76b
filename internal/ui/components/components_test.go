// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/session"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// TIMEOUT OVERLAY TESTS
// =============================================================================

func TestTimeoutOverlay_HiddenWhileActive(t *testing.T) {
	o := NewTimeoutOverlay()
	o.SetView(session.View{State: session.StateActive})
	if o.IsVisible() {
		t.Error("overlay visible in Active state")
	}
	if o.View() != "" {
		t.Error("hidden overlay rendered content")
	}
}

func TestTimeoutOverlay_Warning(t *testing.T) {
	o := NewTimeoutOverlay()
	o.SetSize(80, 24)
	o.SetView(session.View{State: session.StateWarning, Visible: true, Remaining: 30})

	if !o.IsWarning() || o.Remaining() != 30 {
		t.Fatalf("IsWarning=%v Remaining=%d", o.IsWarning(), o.Remaining())
	}
	out := o.View()
	if !strings.Contains(out, "0:30") {
		t.Errorf("warning view missing countdown:\n%s", out)
	}
	if !strings.Contains(out, "Enter") {
		t.Errorf("warning view missing stay-connected hint:\n%s", out)
	}

	o.SetView(session.View{State: session.StateWarning, Visible: true, Remaining: 29})
	if !strings.Contains(o.View(), "0:29") {
		t.Error("countdown not updated")
	}
}

func TestTimeoutOverlay_Expired(t *testing.T) {
	o := NewTimeoutOverlay()
	o.SetView(session.View{State: session.StateExpired})
	if !o.IsVisible() || o.IsWarning() {
		t.Fatal("expired overlay should be visible and not a warning")
	}
	if !strings.Contains(o.View(), "Session expired") {
		t.Errorf("expired view:\n%s", o.View())
	}

	o.Reset()
	if o.IsVisible() {
		t.Error("Reset should hide the overlay")
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := map[int]string{
		30: "0:30", 5: "0:05", 0: "0:00", -3: "0:00", 90: "1:30",
	}
	for in, want := range tests {
		if got := FormatCountdown(in); got != want {
			t.Errorf("FormatCountdown(%d) = %q, want %q", in, got, want)
		}
	}
}

// =============================================================================
// NOTICE TESTS
// =============================================================================

func TestNotices_PushAndPrune(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	n := NewNotices()
	n.now = func() time.Time { return now }

	n.Info("saved")
	errID := n.Error("failed")

	items := n.Items()
	if len(items) != 2 || items[0].ID != errID {
		t.Fatalf("items = %+v, want newest first", items)
	}

	now = now.Add(DefaultNoticeDuration)
	if !n.Prune() {
		t.Fatal("error notice should survive the info duration")
	}
	if n.Len() != 1 || n.Items()[0].Kind != NoticeError {
		t.Errorf("after prune: %+v", n.Items())
	}

	now = now.Add(ErrorNoticeDuration)
	if n.Prune() {
		t.Error("all notices should have expired")
	}
}

func TestNotices_BoundedAndDismiss(t *testing.T) {
	n := NewNotices()
	for i := 0; i < MaxNotices+3; i++ {
		n.Warn("w")
	}
	if n.Len() != MaxNotices {
		t.Errorf("Len() = %d, want %d", n.Len(), MaxNotices)
	}

	id := n.Items()[0].ID
	n.Dismiss(id)
	if n.Len() != MaxNotices-1 {
		t.Errorf("Dismiss did not remove notice %d", id)
	}
	n.DismissAll()
	if n.Len() != 0 {
		t.Error("DismissAll left notices")
	}
}

func TestRenderNotices(t *testing.T) {
	items := []Notice{
		{ID: 2, Message: "second", Kind: NoticeSuccess},
		{ID: 1, Message: "first", Kind: NoticeInfo},
	}
	out := RenderNotices(items, 80)
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Errorf("older notice should render on top:\n%s", out)
	}
	if RenderNotices(nil, 80) != "" {
		t.Error("empty stack should render nothing")
	}
}

func TestWrapWords(t *testing.T) {
	got := wrapWords("uno dos tres cuatro", 8)
	want := "uno dos\ntres\ncuatro"
	if got != want {
		t.Errorf("wrapWords = %q, want %q", got, want)
	}
}

// =============================================================================
// TABLE TESTS
// =============================================================================

func newTestTable() *Table {
	tb := NewTable(styles.NewTheme(styles.ModeDark),
		Column{Title: "Area", Width: 10},
		Column{Title: "Supervisor"},
	)
	tb.SetSize(40, 2)
	return tb
}

func TestTable_CursorClamps(t *testing.T) {
	tb := newTestTable()
	if tb.Cursor() != -1 {
		t.Errorf("empty table Cursor() = %d, want -1", tb.Cursor())
	}

	tb.SetRows([][]string{{"Norte", "Pérez"}, {"Sur", "Soto"}, {"Este", "Muñoz"}})
	tb.MoveDown(10)
	if tb.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", tb.Cursor())
	}
	tb.MoveUp(10)
	if tb.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", tb.Cursor())
	}

	tb.SetCursor(2)
	tb.SetRows([][]string{{"Norte", "Pérez"}})
	if tb.Cursor() != 0 {
		t.Errorf("cursor not clamped after shrink: %d", tb.Cursor())
	}
}

func TestTable_ViewScrollsAndTruncates(t *testing.T) {
	tb := newTestTable()
	tb.SetRows([][]string{
		{"Norte", "Pérez"},
		{"Sur", "Soto"},
		{"Poniente lejano", "Muñoz"},
	})
	tb.SetCursor(2)

	out := tb.View()
	if strings.Contains(out, "Norte") {
		t.Errorf("first row should be scrolled out:\n%s", out)
	}
	if !strings.Contains(out, "Ponient...") {
		t.Errorf("long cell should be truncated:\n%s", out)
	}
	if !strings.Contains(out, "3/3") {
		t.Errorf("missing position indicator:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n")[:3] {
		if w := lipgloss.Width(line); w != 40 {
			t.Errorf("line width %d, want 40: %q", w, line)
		}
	}
}

func TestTable_Empty(t *testing.T) {
	tb := newTestTable()
	tb.SetEmptyText("No reports")
	if !strings.Contains(tb.View(), "No reports") {
		t.Error("empty text not rendered")
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar_ShowsSessionState(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme(styles.ModeDark))
	sb.SetWidth(100)
	sb.SetHints(KeyHint{"n", "new"}, KeyHint{"q", "quit"})
	sb.SetUser("marta", model.RoleAdmin)

	out := sb.View()
	for _, want := range []string{"new", "quit", "marta", "ACTIVE"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q:\n%s", want, out)
		}
	}

	sb.Session = session.View{State: session.StateWarning, Visible: true, Remaining: 12}
	if !strings.Contains(sb.View(), "0:12") {
		t.Errorf("warning countdown missing:\n%s", sb.View())
	}
}

func TestStatusBar_DropsHintsWhenNarrow(t *testing.T) {
	sb := NewStatusBar(styles.NewTheme(styles.ModeDark))
	sb.SetWidth(30)
	sb.SetHints(KeyHint{"n", "new"}, KeyHint{"d", "delete"}, KeyHint{"x", "export"}, KeyHint{"q", "quit"})
	sb.SetUser("marta", model.RoleUser)

	out := sb.View()
	if strings.Contains(out, "quit") {
		t.Errorf("trailing hint should be dropped at width 30:\n%s", out)
	}
	if !strings.Contains(out, "marta") {
		t.Errorf("user segment should survive:\n%s", out)
	}
}

// =============================================================================
// MISC
// =============================================================================

func TestHighlightJSON_KeepsContent(t *testing.T) {
	out := HighlightJSON(`{"area":"Norte"}`)
	if !strings.Contains(out, "Norte") {
		t.Errorf("highlighted output lost content: %q", out)
	}
}

