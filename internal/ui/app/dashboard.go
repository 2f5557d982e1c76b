// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shiftlog-tui/internal/export"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/ui/components"
	"github.com/jeranaias/shiftlog-tui/internal/ui/styles"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// =============================================================================
// DASHBOARD SCREEN
// =============================================================================

// dashboardScreen lists the configured chart links next to a summary of the
// loaded reports.
type dashboardScreen struct {
	theme  *styles.Theme
	urls   []string
	cursor int
}

func newDashboardScreen(theme *styles.Theme, urls []string) dashboardScreen {
	d := dashboardScreen{theme: theme}
	d.setURLs(urls)
	return d
}

func (d *dashboardScreen) setURLs(urls []string) {
	d.urls = nil
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			d.urls = append(d.urls, u)
		}
	}
	if d.cursor >= len(d.urls) {
		d.cursor = len(d.urls) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	d := &m.dashboard
	k := m.keys
	switch {
	case key.Matches(km, k.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, k.Down):
		if d.cursor < len(d.urls)-1 {
			d.cursor++
		}
	case key.Matches(km, k.Select):
		if d.cursor < len(d.urls) {
			if err := export.Open(d.urls[d.cursor]); err != nil {
				return m, m.notify(components.NoticeWarning, "Cannot open chart: "+err.Error())
			}
		}
	case key.Matches(km, k.Back), key.Matches(km, k.Quit):
		m.screen = screenReports
	}
	return m, nil
}

// summary is the tally shown above the chart list.
type summary struct {
	reports    int
	members    int
	minutes    int
	byArea     map[string]int
	attendance map[model.Attendance]int
}

func summarize(reports []model.Report) summary {
	s := summary{
		reports:    len(reports),
		byArea:     make(map[string]int),
		attendance: make(map[model.Attendance]int),
	}
	for _, r := range reports {
		s.byArea[r.Area]++
		for _, row := range r.Team {
			s.members++
			if row.Attendance != "" {
				s.attendance[row.Attendance]++
			}
			s.minutes += hoursToMinutes(row.Hours())
		}
	}
	return s
}

func hoursToMinutes(hm string) int {
	h, mm, ok := strings.Cut(hm, ":")
	if !ok {
		return 0
	}
	hours, err1 := strconv.Atoi(h)
	mins, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil {
		return 0
	}
	return hours*60 + mins
}

func (m Model) viewDashboard() string {
	d := m.dashboard
	t := d.theme
	s := summarize(m.reports.items)

	lines := []string{t.Title.UnsetMarginBottom().Render("Dashboard"), ""}
	lines = append(lines,
		t.Label.Render(util.PadRight("Reports", 14))+t.Value.Render(strconv.Itoa(s.reports)),
		t.Label.Render(util.PadRight("Crew rows", 14))+t.Value.Render(strconv.Itoa(s.members)),
		t.Label.Render(util.PadRight("Worked", 14))+t.Value.Render(
			strconv.Itoa(s.minutes/60)+"h "+strconv.Itoa(s.minutes%60)+"m"),
	)

	if len(s.byArea) > 0 {
		areas := make([]string, 0, len(s.byArea))
		for a := range s.byArea {
			areas = append(areas, a)
		}
		sort.Slice(areas, func(i, j int) bool {
			if s.byArea[areas[i]] != s.byArea[areas[j]] {
				return s.byArea[areas[i]] > s.byArea[areas[j]]
			}
			return areas[i] < areas[j]
		})
		lines = append(lines, "", t.Subtitle.Render("By area"))
		for _, a := range areas {
			lines = append(lines, "  "+util.PadRight(util.TruncateWidth(a, 30), 32)+strconv.Itoa(s.byArea[a]))
		}
	}

	if len(s.attendance) > 0 {
		lines = append(lines, "", t.Subtitle.Render("Attendance"))
		var parts []string
		for _, code := range model.AttendanceCodes {
			if n := s.attendance[code]; n > 0 {
				parts = append(parts, string(code)+" "+strconv.Itoa(n))
			}
		}
		lines = append(lines, "  "+strings.Join(parts, "  "))
	}

	lines = append(lines, "", t.Subtitle.Render("Charts"))
	if len(d.urls) == 0 {
		lines = append(lines, t.Muted.Render("  No chart URLs configured. Set [dashboard] chart_urls in the config file."))
	}
	for i, u := range d.urls {
		if i == d.cursor {
			lines = append(lines, t.TableSelected.Render("> "+u))
		} else {
			lines = append(lines, "  "+t.Muted.Render(u))
		}
	}
	return strings.Join(lines, "\n")
}
