// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// =============================================================================
// WORKED HOURS TESTS
// =============================================================================

func TestWorkedHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"day shift", "08:00", "17:30", "9:30"},
		{"overnight", "22:00", "06:15", "8:15"},
		{"same time", "07:00", "07:00", "0:00"},
		{"single digit minutes", "08:55", "09:00", "0:05"},
		{"missing start", "", "17:00", ""},
		{"missing end", "08:00", "", ""},
		{"garbage", "8h", "17:00", ""},
		{"out of range", "25:00", "17:00", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WorkedHours(tc.start, tc.end); got != tc.want {
				t.Errorf("WorkedHours(%q, %q) = %q, want %q", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

// =============================================================================
// DRAFT TESTS
// =============================================================================

type stubResolver map[string]string

func (s stubResolver) ActivityName(id string) string { return s["a:"+id] }
func (s stubResolver) SegmentName(id string) string  { return s["s:"+id] }

func TestDraft_BuildRequiresHeader(t *testing.T) {
	d := NewDraft()
	d.Area = "Norte"
	d.Team[0].Name = "Juan"

	_, err := d.Build(nil)
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("Build() error = %v, want ErrMissingHeader", err)
	}
}

func TestDraft_BuildRequiresCrew(t *testing.T) {
	d := NewDraft()
	d.Area, d.Shift, d.Supervisor = "Norte", "Día", "Pérez"
	d.AddRow()

	_, err := d.Build(nil)
	if !errors.Is(err, ErrEmptyTeam) {
		t.Fatalf("Build() error = %v, want ErrEmptyTeam", err)
	}
}

func TestDraft_Build(t *testing.T) {
	d := NewDraft()
	d.Area, d.Shift, d.Supervisor = " Norte ", "Noche", "Pérez"
	d.Team[0] = TeamRow{Name: "Juan", ActivityID: "1", SegmentID: "9", StartTime: "22:00", EndTime: "06:00"}
	d.AddRow()
	d.Team = append(d.Team, TeamRow{Name: "Ana", Segment: "Tramo manual", SegmentID: "9"})
	d.Progress = "  Losa terminada "
	d.Comments = "   "

	report, err := d.Build(stubResolver{"a:1": "Excavación", "s:9": "Tramo 9"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if report.Area != "Norte" {
		t.Errorf("Area = %q, want trimmed", report.Area)
	}
	if len(report.Team) != 2 {
		t.Fatalf("Team has %d rows, want 2 (blank row dropped)", len(report.Team))
	}
	if report.Team[0].Activity != "Excavación" {
		t.Errorf("Activity = %q, want resolved name", report.Team[0].Activity)
	}
	if report.Team[0].Segment != "Tramo 9" {
		t.Errorf("Segment = %q, want resolved name", report.Team[0].Segment)
	}
	if report.Team[1].Segment != "Tramo manual" {
		t.Errorf("Segment = %q, explicit name should be kept", report.Team[1].Segment)
	}
	if len(report.Progress) != 1 || report.Progress[0].Description != "Losa terminada" {
		t.Errorf("Progress = %+v, want one trimmed note", report.Progress)
	}
	if report.Comments == nil || len(report.Comments) != 0 {
		t.Errorf("Comments = %#v, want empty non-nil slice", report.Comments)
	}
}

func TestDraft_RemoveRowKeepsLast(t *testing.T) {
	d := NewDraft()
	d.RemoveRow(0)
	if len(d.Team) != 1 {
		t.Fatalf("last row removed, have %d rows", len(d.Team))
	}

	d.AddRow()
	d.Team[1].Name = "Ana"
	d.RemoveRow(0)
	if len(d.Team) != 1 || d.Team[0].Name != "Ana" {
		t.Errorf("RemoveRow(0) left %+v", d.Team)
	}
}

func TestDraft_RowEditsLeaveCopiesAlone(t *testing.T) {
	d := NewDraft()
	d.Team[0].Name = "Juan"
	d.AddRow()
	d.Team[1].Name = "Ana"
	d.AddRow()
	d.Team[2].Name = "Luis"

	saved := d
	d.RemoveRow(0)
	if got := []string{saved.Team[0].Name, saved.Team[1].Name, saved.Team[2].Name}; got[0] != "Juan" || got[1] != "Ana" || got[2] != "Luis" {
		t.Errorf("copy changed by RemoveRow: %v", got)
	}

	saved = d
	d.AddRow()
	d.Team[2].Name = "Pedro"
	saved.Team = append(saved.Team, TeamRow{Name: "Rosa"})
	if d.Team[2].Name != "Pedro" {
		t.Errorf("AddRow shares storage with a copy: row = %q", d.Team[2].Name)
	}
}

func TestDraft_IsBlank(t *testing.T) {
	d := NewDraft()
	if !d.IsBlank() {
		t.Error("new draft should be blank")
	}
	d.Team[0].Attendance = AttendanceOnSite
	if d.IsBlank() {
		t.Error("draft with attendance should not be blank")
	}
}

// =============================================================================
// WIRE FORMAT TESTS
// =============================================================================

func TestReport_UnmarshalAcceptsMongoID(t *testing.T) {
	var r Report
	data := `{"_id":"abc","area":"Sur","jornada":"Día","team":[{"nombre":"Juan","tipoAsist":"EO"}],"avances":[{"descripcion":"ok"}]}`
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.ID != "abc" {
		t.Errorf("ID = %q, want abc", r.ID)
	}
	if r.Team[0].Attendance != AttendanceOnSite {
		t.Errorf("Attendance = %q", r.Team[0].Attendance)
	}
	if JoinNotes(r.Progress) != "ok" {
		t.Errorf("Progress = %+v", r.Progress)
	}
}

func TestAttendance(t *testing.T) {
	if len(AttendanceCodes) != 11 {
		t.Errorf("have %d attendance codes, want 11", len(AttendanceCodes))
	}
	for _, code := range AttendanceCodes {
		if code.Definition() == "" {
			t.Errorf("code %q has no definition", code)
		}
	}
	if Attendance("XX").Valid() {
		t.Error("unknown code should be invalid")
	}
	if ParseRole("root") != RoleUser || ParseRole("admin") != RoleAdmin {
		t.Error("ParseRole mapping wrong")
	}
}
