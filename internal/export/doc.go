// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes shift reports to files.
//
// # Key Types
//
//   - Exporter: format-specific encoder for a list of reports
//   - Options: output directory and open-after-export
//
// # Supported Formats
//
//   - XLSX: sheet "Informes", one row per crew member
//   - JSON: the reports in wire format
//   - Markdown: human-readable, used for the detail view
//
// # Usage
//
//	path, err := export.ToFile(reports, export.NewXLSXExporter(cat), &export.Options{OutputDir: dir})
package export
