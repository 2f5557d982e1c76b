// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
)

// =============================================================================
// NOTICE TYPES
// =============================================================================

// NoticeKind selects the color and icon of a notice.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// Display durations per kind. Errors stay longer so they can be read.
const (
	DefaultNoticeDuration = 4 * time.Second
	WarningNoticeDuration = 6 * time.Second
	ErrorNoticeDuration   = 8 * time.Second
)

// MaxNotices bounds how many notices are stacked at once.
const MaxNotices = 4

// Notice is a non-blocking message shown in the bottom-right corner.
type Notice struct {
	ID        int
	Message   string
	Kind      NoticeKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the notice should be dropped at now.
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= n.Duration
}

func durationFor(kind NoticeKind) time.Duration {
	switch kind {
	case NoticeError:
		return ErrorNoticeDuration
	case NoticeWarning:
		return WarningNoticeDuration
	default:
		return DefaultNoticeDuration
	}
}

// =============================================================================
// NOTICE STACK
// =============================================================================

// Notices is a bounded, newest-first stack of notices.
type Notices struct {
	mu     sync.Mutex
	items  []Notice
	nextID int
	now    func() time.Time
}

// NewNotices creates an empty stack.
func NewNotices() *Notices {
	return &Notices{nextID: 1, now: time.Now}
}

// Push adds a notice and returns its ID.
func (s *Notices) Push(kind NoticeKind, message string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notice{
		ID:        s.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: s.now(),
		Duration:  durationFor(kind),
	}
	s.nextID++

	s.items = append([]Notice{n}, s.items...)
	if len(s.items) > MaxNotices {
		s.items = s.items[:MaxNotices]
	}
	return n.ID
}

// Info pushes an informational notice.
func (s *Notices) Info(message string) int { return s.Push(NoticeInfo, message) }

// Success pushes a success notice.
func (s *Notices) Success(message string) int { return s.Push(NoticeSuccess, message) }

// Warn pushes a warning notice.
func (s *Notices) Warn(message string) int { return s.Push(NoticeWarning, message) }

// Error pushes an error notice.
func (s *Notices) Error(message string) int { return s.Push(NoticeError, message) }

// Dismiss removes a notice by ID.
func (s *Notices) Dismiss(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// DismissAll removes every notice.
func (s *Notices) DismissAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Prune drops expired notices and reports whether any remain.
func (s *Notices) Prune() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active := s.items[:0]
	for _, n := range s.items {
		if !n.Expired(now) {
			active = append(active, n)
		}
	}
	s.items = active
	return len(s.items) > 0
}

// Items returns a copy of the current notices, newest first.
func (s *Notices) Items() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of notices.
func (s *Notices) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// NoticeTickMsg drives notice expiry.
type NoticeTickMsg struct {
	Time time.Time
}

// NoticeTickCmd schedules the next prune.
func NoticeTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return NoticeTickMsg{Time: t}
	})
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderNotice renders one notice box.
func RenderNotice(n Notice, width int) string {
	maxWidth := 56
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 28 {
		maxWidth = 28
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch n.Kind {
	case NoticeError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case NoticeWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case NoticeSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	content := iconStyle.Render(icon+" ") + msgStyle.Render(wrapWords(n.Message, maxWidth-10))

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderNotices stacks notices vertically, oldest on top.
func RenderNotices(items []Notice, width int) string {
	if len(items) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderNotice(items[i], width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}

// wrapWords performs greedy word wrapping on display width.
func wrapWords(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range words {
		w := lipgloss.Width(word)
		switch {
		case lineWidth == 0:
			line.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= maxWidth:
			line.WriteString(" ")
			line.WriteString(word)
			lineWidth += 1 + w
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
			lineWidth = w
		}
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// countLabel renders "n noun" with a plural s.
func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
