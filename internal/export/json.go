// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/shiftlog-tui/internal/model"
)

// JSONExporter exports reports in the API wire format.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export encodes reports as an indented JSON array.
func (e *JSONExporter) Export(reports []model.Report) ([]byte, error) {
	if reports == nil {
		reports = []model.Report{}
	}
	return json.MarshalIndent(reports, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
