package dto

import (
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/stats"
)

// CreateSessionRequest captures the schedule-session form.
type CreateSessionRequest struct {
	GroupID  string  `json:"group_id" validate:"required"`
	DateTime string  `json:"date_time" validate:"required"`
	Topic    *string `json:"topic,omitempty" validate:"omitempty,max=200"`
}

// UpdateSessionRequest captures the edit-session form.
type UpdateSessionRequest struct {
	GroupID  string  `json:"group_id" validate:"required"`
	DateTime string  `json:"date_time" validate:"required"`
	Topic    *string `json:"topic,omitempty" validate:"omitempty,max=200"`
}

// SessionListRequest filters the session list.
type SessionListRequest struct {
	GroupID string `json:"group_id,omitempty"`
	Search  string `json:"search,omitempty"`
}

// SessionListItem is a session row with its resolved group and attendance figures.
type SessionListItem struct {
	models.Session
	GroupName  string                `json:"group_name"`
	Attendance stats.AttendanceStats `json:"attendance"`
	Reports    int                   `json:"reports"`
	IsToday    bool                  `json:"is_today"`
	IsUpcoming bool                  `json:"is_upcoming"`
}

// SessionListResponse is the session list with summary counters over the listed sessions.
type SessionListResponse struct {
	Sessions []SessionListItem    `json:"sessions"`
	Summary  stats.SessionSummary `json:"summary"`
}
