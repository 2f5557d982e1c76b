// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

func sampleReports() []model.Report {
	return []model.Report{
		{
			ID:         "r1",
			Username:   "marta",
			Area:       "Norte",
			Shift:      "Noche",
			Supervisor: "Soto",
			Team: []model.TeamRow{
				{Name: "Juan", RUT: "1-9", Position: "Maestro", Attendance: model.AttendanceOnSite,
					SegmentID: "t1", ActivityID: "a1", StartTime: "22:00", EndTime: "06:30"},
				{Name: "Ana", Segment: "Tramo manual", Activity: "Moldaje"},
			},
			Progress:  []model.Note{{Description: "Losa"}, {Description: "Muro"}},
			Comments:  []model.Note{},
			Stoppages: []model.Note{{Description: "Lluvia"}},
		},
		{ID: "r2", Area: "Sur", Shift: "Día", Supervisor: "Díaz"},
	}
}

func sampleCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Activities: []catalog.Entry{{ID: "a1", Name: "Excavación"}},
		Segments:   []catalog.Entry{{ID: "t1", Name: "Tramo 1"}},
	}
}

// =============================================================================
// ROW FLATTENING
// =============================================================================

func TestRows(t *testing.T) {
	rows := Rows(sampleReports(), sampleCatalog())
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (two members plus one crewless report)", len(rows))
	}
	for i, r := range rows {
		if len(r) != len(Columns) {
			t.Fatalf("row %d has %d cells, want %d", i, len(r), len(Columns))
		}
	}

	first := rows[0]
	checks := map[int]string{
		0: "marta", 5: "Juan", 9: "EO", 10: "Tramo 1", 11: "Excavación",
		14: "8:30", 15: "Losa; Muro", 17: "Lluvia", 18: "",
	}
	for col, want := range checks {
		if first[col] != want {
			t.Errorf("row 0 %s = %q, want %q", Columns[col], first[col], want)
		}
	}

	second := rows[1]
	if second[10] != "Tramo manual" || second[11] != "Moldaje" || second[14] != "" {
		t.Errorf("row 1 = %q", second)
	}
	if rows[2][1] != "Sur" || rows[2][5] != "" {
		t.Errorf("crewless report row = %q", rows[2])
	}
}

func TestRows_ActivityFallsBackToID(t *testing.T) {
	rows := Rows([]model.Report{{Team: []model.TeamRow{{ActivityID: "zz"}}}}, nil)
	if rows[0][11] != "zz" {
		t.Errorf("Actividad = %q, want raw id", rows[0][11])
	}
}

// =============================================================================
// XLSX
// =============================================================================

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReports(), sampleCatalog()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, SheetName)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][11] != "Excavación" {
		t.Errorf("Actividad = %q", rows[1][11])
	}
}

// =============================================================================
// FILES
// =============================================================================

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{
		OutputDir: dir,
		Now:       func() time.Time { return time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC) },
	}

	path, err := ToFile(sampleReports(), NewJSONExporter(), opts)
	if err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if filepath.Base(path) != "informes_20250301_083000.json" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back []model.Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(back) != 2 || back[0].Area != "Norte" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestToFile_Empty(t *testing.T) {
	if _, err := ToFile(nil, NewJSONExporter(), &Options{OutputDir: t.TempDir()}); err != ErrNothingToExport {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}

func TestNew(t *testing.T) {
	for format, ext := range map[string]string{"xlsx": ".xlsx", "JSON": ".json", "markdown": ".md"} {
		e, err := New(format, nil)
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if e.FileExtension() != ext {
			t.Errorf("New(%q).FileExtension() = %q", format, e.FileExtension())
		}
	}
	if _, err := New("pdf", nil); err == nil {
		t.Error("New(pdf) should fail")
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestReportMarkdown(t *testing.T) {
	md := ReportMarkdown(sampleReports()[0])
	for _, want := range []string{"# Norte / Noche", "| Juan | 1-9 |", "## Progress", "- Losa", "## Stoppages"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Comments") {
		t.Error("empty section should be omitted")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("a/b: c"); got != "a-b-_c" {
		t.Errorf("SanitizeFilename = %q", got)
	}
	if got := SanitizeFilename(""); got != "informe" {
		t.Errorf("SanitizeFilename(empty) = %q", got)
	}
}
