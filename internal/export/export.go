// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
	"github.com/jeranaias/shiftlog-tui/internal/util"
)

// ErrNothingToExport is returned for an empty report list.
var ErrNothingToExport = errors.New("no reports to export")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter encodes reports in one format.
type Exporter interface {
	// Export returns the encoded file content.
	Export(reports []model.Report) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures ToFile.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// Now stamps the file name. Default: time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// New returns the exporter for format: "xlsx", "json" or "md".
func New(format string, cat *catalog.Catalog) (Exporter, error) {
	switch strings.ToLower(format) {
	case "xlsx", "excel", "":
		return NewXLSXExporter(cat), nil
	case "json":
		return NewJSONExporter(), nil
	case "md", "markdown":
		return NewMarkdownExporter(), nil
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

// ToFile exports reports to a new file in opts.OutputDir and returns its
// path. The file is written atomically with mode 0600.
func ToFile(reports []model.Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(reports) == 0 {
		return "", ErrNothingToExport
	}

	content, err := exporter.Export(reports)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	filename := fmt.Sprintf("informes_%s%s", now().Format("20060102_150405"), exporter.FileExtension())
	outputPath := filepath.Join(dir, filename)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := Open(outputPath); err != nil {
			return outputPath, fmt.Errorf("exported to %s but could not open it: %w", outputPath, err)
		}
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// SanitizeFilename replaces characters that are invalid in file names.
func SanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)

	replacer := map[rune]rune{
		'/': '-', '\\': '-', ':': '-', '*': '-', '?': '-',
		'"': '-', '<': '-', '>': '-', '|': '-',
		' ': '_', '\t': '_', '\n': '_', '\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return "informe"
	}
	return string(result)
}

// Open opens a file or URL in the default application for the OS.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// formatTimestamp formats a submission time for spreadsheets and text.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
