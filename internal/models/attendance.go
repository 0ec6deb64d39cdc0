package models

import (
	"strings"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// DefaultAttendanceStatus applies to every student without a recorded status.
const DefaultAttendanceStatus = AttendanceStatusAbsent

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Label returns the display text for the status.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendanceStatusPresent:
		return "Present"
	case AttendanceStatusAbsent:
		return "Absent"
	case AttendanceStatusExcused:
		return "Excused"
	default:
		return ""
	}
}

// ParseAttendanceStatus normalises raw input into a status.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	status := AttendanceStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

// BulkOperationMode controls how bulk writes behave on errors.
type BulkOperationMode string

const (
	BulkModeAtomic         BulkOperationMode = "atomic"
	BulkModePartialOnError BulkOperationMode = "partialOnError"
)

// Valid returns true for the supported bulk modes.
func (m BulkOperationMode) Valid() bool {
	return m == BulkModeAtomic || m == BulkModePartialOnError
}

// AttendanceRecord is one student's presence status for one session.
type AttendanceRecord struct {
	SessionID string           `json:"session_id"`
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// AttendanceSheetRow pairs a roster student with the effective status.
type AttendanceSheetRow struct {
	Student  Student          `json:"student"`
	Status   AttendanceStatus `json:"status"`
	Recorded bool             `json:"recorded"`
}

// BulkItemFailure captures a rejected item of a partial bulk write.
type BulkItemFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}
