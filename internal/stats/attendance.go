// Package stats derives display statistics from store snapshots. Every function is pure.
package stats

import (
	"github.com/noah-isme/sma-classroom/internal/models"
)

// AttendanceStats summarises one session's attendance.
type AttendanceStats struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Excused int     `json:"excused"`
	Total   int     `json:"total"`
	Rate    float64 `json:"rate"`
}

// ComputeAttendanceStats counts statuses over the group roster. Total is the roster size;
// students without a record count as absent and records of students outside the roster
// are ignored, so Present+Absent+Excused always equals Total.
func ComputeAttendanceStats(roster []models.Student, records []models.AttendanceRecord) AttendanceStats {
	byStudent := make(map[string]models.AttendanceStatus, len(records))
	for _, record := range records {
		byStudent[record.StudentID] = record.Status
	}

	stats := AttendanceStats{Total: len(roster)}
	for _, student := range roster {
		status, ok := byStudent[student.ID]
		if !ok {
			status = models.DefaultAttendanceStatus
		}
		switch status {
		case models.AttendanceStatusPresent:
			stats.Present++
		case models.AttendanceStatusExcused:
			stats.Excused++
		case models.AttendanceStatusAbsent:
			stats.Absent++
		default:
			stats.Absent++
		}
	}
	stats.Rate = Percentage(stats.Present, stats.Total)
	return stats
}

// Percentage returns part/total*100, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// AttendanceSheet pairs each roster student with the effective status.
func AttendanceSheet(roster []models.Student, records []models.AttendanceRecord) []models.AttendanceSheetRow {
	byStudent := make(map[string]models.AttendanceStatus, len(records))
	for _, record := range records {
		byStudent[record.StudentID] = record.Status
	}
	rows := make([]models.AttendanceSheetRow, 0, len(roster))
	for _, student := range roster {
		status, ok := byStudent[student.ID]
		if !ok {
			status = models.DefaultAttendanceStatus
		}
		rows = append(rows, models.AttendanceSheetRow{Student: student, Status: status, Recorded: ok})
	}
	return rows
}
