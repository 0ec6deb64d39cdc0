package stats

import (
	"time"

	"github.com/noah-isme/sma-classroom/internal/models"
)

// SessionSummary holds the counters shown above a session list.
type SessionSummary struct {
	TotalSessions     int `json:"total_sessions"`
	UpcomingSessions  int `json:"upcoming_sessions"`
	TodaySessions     int `json:"today_sessions"`
	CompletedSessions int `json:"completed_sessions"`
}

// ComputeSessionSummary classifies sessions against now. The categories overlap: a session
// earlier today is both today and completed.
func ComputeSessionSummary(sessions []models.Session, now time.Time) SessionSummary {
	summary := SessionSummary{TotalSessions: len(sessions)}
	for _, session := range sessions {
		if session.IsUpcoming(now) {
			summary.UpcomingSessions++
		}
		if session.IsToday(now) {
			summary.TodaySessions++
		}
		if session.IsCompleted(now) {
			summary.CompletedSessions++
		}
	}
	return summary
}

// PerformanceBreakdown counts reports per level, listing every level even when zero.
type PerformanceBreakdown struct {
	Level models.PerformanceLevel `json:"level"`
	Count int                     `json:"count"`
}

// ComputePerformanceBreakdown tallies reports by performance level, best level first.
func ComputePerformanceBreakdown(reports []models.SessionReport) []PerformanceBreakdown {
	counts := make(map[models.PerformanceLevel]int, len(reports))
	for _, report := range reports {
		counts[report.Performance]++
	}
	levels := models.PerformanceLevels()
	out := make([]PerformanceBreakdown, len(levels))
	for i, level := range levels {
		out[i] = PerformanceBreakdown{Level: level, Count: counts[level]}
	}
	return out
}

// ReportCoverage is the share of roster students with a written report.
func ReportCoverage(roster []models.Student, reports []models.SessionReport) float64 {
	inRoster := make(map[string]struct{}, len(roster))
	for _, student := range roster {
		inRoster[student.ID] = struct{}{}
	}
	written := 0
	for _, report := range reports {
		if _, ok := inRoster[report.StudentID]; ok {
			written++
		}
	}
	return Percentage(written, len(roster))
}
