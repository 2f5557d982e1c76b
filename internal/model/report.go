// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Note is one free-text entry in a report section.
type Note struct {
	Description string `json:"descripcion"`
}

// Notes builds the wire form of a free-text field: one note, or none when
// text is blank.
func Notes(text string) []Note {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Note{}
	}
	return []Note{{Description: text}}
}

// JoinNotes flattens notes for single-cell display.
func JoinNotes(notes []Note) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, n.Description)
	}
	return strings.Join(parts, "; ")
}

// =============================================================================
// TEAM ROW
// =============================================================================

// TeamRow is one crew member's line in the roster.
type TeamRow struct {
	RUT           string     `json:"rut"`
	Name          string     `json:"nombre"`
	Position      string     `json:"cargo"`
	EquipmentCode string     `json:"codigoEquipo"`
	Attendance    Attendance `json:"tipoAsist"`
	Segment       string     `json:"tramo"`
	WorkerID      string     `json:"workerId"`
	SegmentID     string     `json:"tramoId"`
	ActivityID    string     `json:"activityId"`
	Activity      string     `json:"actividad,omitempty"`
	StartTime     string     `json:"horaInicio"`
	EndTime       string     `json:"horaFin"`
}

// IsEmpty reports whether every field of the row is blank.
func (r TeamRow) IsEmpty() bool {
	for _, v := range []string{
		r.RUT, r.Name, r.Position, r.EquipmentCode, string(r.Attendance),
		r.Segment, r.WorkerID, r.SegmentID, r.ActivityID, r.Activity,
		r.StartTime, r.EndTime,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Hours returns the worked time for the row, "" if either time is missing.
func (r TeamRow) Hours() string {
	return WorkedHours(r.StartTime, r.EndTime)
}

// =============================================================================
// REPORT
// =============================================================================

// Report is a submitted shift report.
type Report struct {
	ID            string    `json:"id,omitempty"`
	Username      string    `json:"username,omitempty"`
	Area          string    `json:"area"`
	Shift         string    `json:"jornada"`
	Supervisor    string    `json:"supervisor"`
	Team          []TeamRow `json:"team"`
	Progress      []Note    `json:"avances"`
	Interferences []Note    `json:"interferencias"`
	Stoppages     []Note    `json:"detenciones"`
	Comments      []Note    `json:"comentarios"`
	SubmittedAt   time.Time `json:"dateSubmitted,omitempty"`
}

// UnmarshalJSON accepts both "id" and "_id" for the identifier.
func (r *Report) UnmarshalJSON(data []byte) error {
	type alias Report
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	return nil
}

// Title returns a one-line label for lists.
func (r Report) Title() string {
	return r.Area + " / " + r.Shift
}

// MemberCount returns the number of crew rows.
func (r Report) MemberCount() int {
	return len(r.Team)
}

// =============================================================================
// WORKED HOURS
// =============================================================================

// WorkedHours returns end minus start as "H:MM". A shift ending before it
// starts wraps past midnight. Either side empty or unparsable yields "".
func WorkedHours(start, end string) string {
	s, ok := parseClock(start)
	if !ok {
		return ""
	}
	e, ok := parseClock(end)
	if !ok {
		return ""
	}
	diff := e - s
	if diff < 0 {
		diff += 24 * 60
	}
	mins := diff % 60
	out := strconv.Itoa(diff/60) + ":"
	if mins < 10 {
		out += "0"
	}
	return out + strconv.Itoa(mins)
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
