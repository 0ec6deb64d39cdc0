package dto

import (
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/stats"
)

// MarkAttendanceRequest records a single student's status.
type MarkAttendanceRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// BulkAttendanceItem is one row of the attendance sheet.
type BulkAttendanceItem struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// BulkMarkAttendanceRequest saves the attendance sheet of a session.
type BulkMarkAttendanceRequest struct {
	SessionID string               `json:"session_id" validate:"required"`
	Mode      string               `json:"mode,omitempty" validate:"omitempty,bulk_mode"`
	Items     []BulkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// BulkResult summarises bulk execution.
type BulkResult struct {
	Processed int                      `json:"processed"`
	Success   int                      `json:"success"`
	Failures  []models.BulkItemFailure `json:"failures,omitempty"`
}

// SessionAttendanceResponse is the attendance view of one session.
type SessionAttendanceResponse struct {
	Session models.Session              `json:"session"`
	Group   models.Group                `json:"group"`
	Sheet   []models.AttendanceSheetRow `json:"sheet"`
	Stats   stats.AttendanceStats       `json:"stats"`
}
