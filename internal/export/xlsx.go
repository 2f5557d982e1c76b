// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// SheetName is the worksheet holding the export.
const SheetName = "Informes"

// Columns are the spreadsheet headers in order.
var Columns = []string{
	"Usuario",
	"Área",
	"Jornada",
	"Supervisor",
	"Fecha de Envío",
	"Nombre Trabajador",
	"RUT Trabajador",
	"Cargo Trabajador",
	"Código Equipo",
	"Tipo de Asistencia",
	"Tramo",
	"Actividad",
	"Hora Inicio",
	"Hora Fin",
	"Horas Trabajadas",
	"Avances",
	"Interferencias",
	"Detenciones",
	"Comentarios",
}

// Rows flattens reports into one row per crew member. A report without crew
// still yields one row. Segment and activity names fall back to cat when the
// row only carries IDs.
func Rows(reports []model.Report, cat *catalog.Catalog) [][]string {
	var rows [][]string
	for _, r := range reports {
		team := r.Team
		if len(team) == 0 {
			team = []model.TeamRow{{}}
		}
		for _, m := range team {
			rows = append(rows, []string{
				r.Username,
				r.Area,
				r.Shift,
				r.Supervisor,
				formatTimestamp(r.SubmittedAt),
				m.Name,
				m.RUT,
				m.Position,
				m.EquipmentCode,
				string(m.Attendance),
				segmentName(m, cat),
				activityName(m, cat),
				m.StartTime,
				m.EndTime,
				m.Hours(),
				model.JoinNotes(r.Progress),
				model.JoinNotes(r.Interferences),
				model.JoinNotes(r.Stoppages),
				model.JoinNotes(r.Comments),
			})
		}
	}
	return rows
}

func segmentName(m model.TeamRow, cat *catalog.Catalog) string {
	if m.Segment != "" || cat == nil {
		return m.Segment
	}
	return cat.SegmentName(m.SegmentID)
}

func activityName(m model.TeamRow, cat *catalog.Catalog) string {
	if cat != nil {
		if name := cat.ActivityName(m.ActivityID); name != "" {
			return name
		}
	}
	if m.Activity != "" {
		return m.Activity
	}
	return m.ActivityID
}

// WriteXLSX writes the workbook for reports to w.
func WriteXLSX(w io.Writer, reports []model.Report, cat *catalog.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, bold)
	}

	for i, row := range Rows(reports, cat) {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "E", 16)
	_ = f.SetColWidth(SheetName, "F", "O", 14)
	_ = f.SetColWidth(SheetName, "P", "S", 30)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// =============================================================================
// XLSX EXPORTER
// =============================================================================

// XLSXExporter exports reports to an Excel workbook.
type XLSXExporter struct {
	catalog *catalog.Catalog
}

// NewXLSXExporter creates an exporter resolving names with cat, which may be
// nil.
func NewXLSXExporter(cat *catalog.Catalog) *XLSXExporter {
	return &XLSXExporter{catalog: cat}
}

// Export encodes the workbook.
func (e *XLSXExporter) Export(reports []model.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, reports, e.catalog); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for XLSX.
func (e *XLSXExporter) FileExtension() string {
	return ".xlsx"
}

// MimeType returns the MIME type for XLSX.
func (e *XLSXExporter) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
