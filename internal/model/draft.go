// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrMissingHeader is returned when area, shift or supervisor is blank.
	ErrMissingHeader = errors.New("area, shift and supervisor are required")

	// ErrEmptyTeam is returned when no roster row has any content.
	ErrEmptyTeam = errors.New("at least one crew member is required")
)

// Resolver turns catalog IDs into display names. An unknown ID yields "".
type Resolver interface {
	ActivityName(id string) string
	SegmentName(id string) string
}

// Draft is a report as edited in the form, before validation.
type Draft struct {
	Area          string    `json:"area"`
	Shift         string    `json:"jornada"`
	Supervisor    string    `json:"supervisor"`
	Team          []TeamRow `json:"team"`
	Progress      string    `json:"avances"`
	Interferences string    `json:"interferencias"`
	Stoppages     string    `json:"detenciones"`
	Comments      string    `json:"comentarios"`
}

// NewDraft returns a draft with one blank roster row.
func NewDraft() Draft {
	return Draft{Team: []TeamRow{{}}}
}

// AddRow appends a blank roster row. Drafts are copied by value, so the
// roster is reallocated rather than grown in place.
func (d *Draft) AddRow() {
	d.Team = append(slices.Clip(d.Team), TeamRow{})
}

// RemoveRow deletes row i. The last remaining row is never removed. Copies
// of the draft keep their rows.
func (d *Draft) RemoveRow(i int) {
	if len(d.Team) <= 1 || i < 0 || i >= len(d.Team) {
		return
	}
	d.Team = slices.Delete(slices.Clone(d.Team), i, i+1)
}

// IsBlank reports whether nothing has been entered.
func (d Draft) IsBlank() bool {
	if strings.TrimSpace(d.Area+d.Shift+d.Supervisor+d.Progress+d.Interferences+d.Stoppages+d.Comments) != "" {
		return false
	}
	for _, row := range d.Team {
		if !row.IsEmpty() {
			return false
		}
	}
	return true
}

// Validate checks the draft without building it.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Area) == "" {
		missing = append(missing, "area")
	}
	if strings.TrimSpace(d.Shift) == "" {
		missing = append(missing, "shift")
	}
	if strings.TrimSpace(d.Supervisor) == "" {
		missing = append(missing, "supervisor")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrMissingHeader, strings.Join(missing, ", "))
	}
	for _, row := range d.Team {
		if !row.IsEmpty() {
			return nil
		}
	}
	return ErrEmptyTeam
}

// Build validates the draft and produces the report to submit. Blank rows are
// dropped, activity and segment names are filled from names, and each free
// text field becomes zero or one note.
func (d Draft) Build(names Resolver) (Report, error) {
	if err := d.Validate(); err != nil {
		return Report{}, err
	}

	team := make([]TeamRow, 0, len(d.Team))
	for _, row := range d.Team {
		if row.IsEmpty() {
			continue
		}
		if names != nil {
			if row.ActivityID != "" {
				row.Activity = names.ActivityName(row.ActivityID)
			}
			if row.Segment == "" && row.SegmentID != "" {
				row.Segment = names.SegmentName(row.SegmentID)
			}
		}
		team = append(team, row)
	}

	return Report{
		Area:          strings.TrimSpace(d.Area),
		Shift:         strings.TrimSpace(d.Shift),
		Supervisor:    strings.TrimSpace(d.Supervisor),
		Team:          team,
		Progress:      Notes(d.Progress),
		Interferences: Notes(d.Interferences),
		Stoppages:     Notes(d.Stoppages),
		Comments:      Notes(d.Comments),
	}, nil
}
