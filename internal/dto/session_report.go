package dto

import (
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/stats"
)

// UpsertSessionReportRequest saves one student's report.
type UpsertSessionReportRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	StudentID    string `json:"student_id" validate:"required"`
	Performance  string `json:"performance" validate:"required,performance_level"`
	Strengths    string `json:"strengths" validate:"max=2000"`
	Improvements string `json:"improvements" validate:"max=2000"`
	Notes        string `json:"notes" validate:"max=2000"`
}

// BulkReportItem is one student's entry in a batch save.
type BulkReportItem struct {
	StudentID    string `json:"student_id" validate:"required"`
	Performance  string `json:"performance" validate:"required,performance_level"`
	Strengths    string `json:"strengths" validate:"max=2000"`
	Improvements string `json:"improvements" validate:"max=2000"`
	Notes        string `json:"notes" validate:"max=2000"`
}

// BulkUpsertReportsRequest saves reports for several students of a session.
type BulkUpsertReportsRequest struct {
	SessionID string           `json:"session_id" validate:"required"`
	Mode      string           `json:"mode,omitempty" validate:"omitempty,bulk_mode"`
	Items     []BulkReportItem `json:"items" validate:"required,min=1,dive"`
}

// StudentReportRow pairs a roster student with the report, when written.
type StudentReportRow struct {
	Student models.Student        `json:"student"`
	Report  *models.SessionReport `json:"report,omitempty"`
}

// SessionReportsResponse lists the reports of a session against its roster.
type SessionReportsResponse struct {
	Session   models.Session               `json:"session"`
	Group     models.Group                 `json:"group"`
	Rows      []StudentReportRow           `json:"rows"`
	Breakdown []stats.PerformanceBreakdown `json:"breakdown"`
	Coverage  float64                      `json:"coverage"`
}
