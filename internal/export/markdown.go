// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders reports as Markdown.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders every report, separated by rules.
func (e *MarkdownExporter) Export(reports []model.Report) ([]byte, error) {
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString(ReportMarkdown(r))
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// ReportMarkdown renders one report: header facts, crew table and notes.
func ReportMarkdown(r model.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(r.Title())))
	sb.WriteString(fmt.Sprintf("- **Supervisor**: %s\n", escapeMarkdown(r.Supervisor)))
	if r.Username != "" {
		sb.WriteString(fmt.Sprintf("- **Submitted by**: %s\n", escapeMarkdown(r.Username)))
	}
	if ts := formatTimestamp(r.SubmittedAt); ts != "" {
		sb.WriteString(fmt.Sprintf("- **Submitted**: %s\n", ts))
	}
	sb.WriteString(fmt.Sprintf("- **Crew**: %d\n\n", r.MemberCount()))

	if len(r.Team) > 0 {
		sb.WriteString("## Crew\n\n")
		sb.WriteString("| Name | RUT | Position | Att. | Segment | Activity | Start | End | Hours |\n")
		sb.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, m := range r.Team {
			activity := m.Activity
			if activity == "" {
				activity = m.ActivityID
			}
			sb.WriteString("| " + strings.Join([]string{
				cell(m.Name), cell(m.RUT), cell(m.Position), cell(string(m.Attendance)),
				cell(m.Segment), cell(activity), cell(m.StartTime), cell(m.EndTime), cell(m.Hours()),
			}, " | ") + " |\n")
		}
		sb.WriteString("\n")
	}

	sections := []struct {
		title string
		notes []model.Note
	}{
		{"Progress", r.Progress},
		{"Interferences", r.Interferences},
		{"Stoppages", r.Stoppages},
		{"Comments", r.Comments},
	}
	for _, s := range sections {
		if len(s.notes) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.title))
		for _, n := range s.notes {
			sb.WriteString("- " + escapeMarkdown(n.Description) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break formatting.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return strings.ReplaceAll(s, "\n", " ")
}

// cell escapes a value for a table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(escapeMarkdown(s), "|", "\\|")
}
