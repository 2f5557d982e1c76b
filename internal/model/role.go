// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role is the permission level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Operator"
	case RoleAdmin:
		return "Administrator"
	default:
		return string(r)
	}
}

// ParseRole converts s to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if r := Role(s); r.Valid() {
		return r
	}
	return RoleUser
}

// =============================================================================
// ATTENDANCE CODES
// =============================================================================

// Attendance is a crew member's attendance code for the shift.
type Attendance string

const (
	AttendanceOnSite      Attendance = "EO"
	AttendanceRest        Attendance = "D"
	AttendanceAbsent      Attendance = "A"
	AttendanceLeave       Attendance = "P"
	AttendancePaidLeave   Attendance = "PP"
	AttendanceSick        Attendance = "E"
	AttendanceMedical     Attendance = "LM"
	AttendanceCourse      Attendance = "C"
	AttendanceTerminated  Attendance = "F"
	AttendanceRejected    Attendance = "R"
	AttendanceTransferred Attendance = "T"
)

// AttendanceCodes lists every code in display order.
var AttendanceCodes = []Attendance{
	AttendanceOnSite,
	AttendanceRest,
	AttendanceAbsent,
	AttendanceLeave,
	AttendancePaidLeave,
	AttendanceSick,
	AttendanceMedical,
	AttendanceCourse,
	AttendanceTerminated,
	AttendanceRejected,
	AttendanceTransferred,
}

var attendanceDefinitions = map[Attendance]string{
	AttendanceOnSite:      "En obra",
	AttendanceRest:        "Descanso",
	AttendanceAbsent:      "Ausente",
	AttendanceLeave:       "Permiso",
	AttendancePaidLeave:   "Permiso Pagado",
	AttendanceSick:        "Enfermo",
	AttendanceMedical:     "Licencia",
	AttendanceCourse:      "Curso",
	AttendanceTerminated:  "Finiquitado",
	AttendanceRejected:    "Rechazado",
	AttendanceTransferred: "Traspaso",
}

// Definition returns the label shown next to the code.
func (a Attendance) Definition() string {
	return attendanceDefinitions[a]
}

// Valid reports whether a is a known code. The empty code is allowed.
func (a Attendance) Valid() bool {
	if a == "" {
		return true
	}
	_, ok := attendanceDefinitions[a]
	return ok
}
