package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom/internal/models"
)

func roster(ids ...string) []models.Student {
	students := make([]models.Student, len(ids))
	for i, id := range ids {
		students[i] = models.Student{ID: id, FullName: "Student " + id, GroupID: "g-1"}
	}
	return students
}

func record(studentID string, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{SessionID: "s-1", StudentID: studentID, Status: status}
}

func TestComputeAttendanceStatsRate(t *testing.T) {
	stats := ComputeAttendanceStats(roster("a", "b", "c", "d"), []models.AttendanceRecord{
		record("a", models.AttendanceStatusPresent),
		record("b", models.AttendanceStatusPresent),
		record("c", models.AttendanceStatusAbsent),
		record("d", models.AttendanceStatusExcused),
	})
	assert.Equal(t, AttendanceStats{Present: 2, Absent: 1, Excused: 1, Total: 4, Rate: 50}, stats)
}

func TestComputeAttendanceStatsDefaultsToAbsent(t *testing.T) {
	stats := ComputeAttendanceStats(roster("a", "b", "c"), []models.AttendanceRecord{
		record("a", models.AttendanceStatusPresent),
		record("outsider", models.AttendanceStatusPresent),
	})
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 2, stats.Absent)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, stats.Total, stats.Present+stats.Absent+stats.Excused)
	assert.InDelta(t, 33.333, stats.Rate, 0.01)
}

func TestComputeAttendanceStatsEmptyGroup(t *testing.T) {
	stats := ComputeAttendanceStats(nil, nil)
	assert.Equal(t, AttendanceStats{}, stats)
}

func TestAttendanceSheet(t *testing.T) {
	rows := AttendanceSheet(roster("a", "b"), []models.AttendanceRecord{record("b", models.AttendanceStatusExcused)})
	require.Len(t, rows, 2)
	assert.Equal(t, models.AttendanceStatusAbsent, rows[0].Status)
	assert.False(t, rows[0].Recorded)
	assert.Equal(t, models.AttendanceStatusExcused, rows[1].Status)
	assert.True(t, rows[1].Recorded)
}

func TestComputeSessionSummary(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ID: "yesterday", DateTime: now.AddDate(0, 0, -1)},
		{ID: "morning", DateTime: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)},
		{ID: "evening", DateTime: time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)},
		{ID: "next-week", DateTime: now.AddDate(0, 0, 7)},
	}
	summary := ComputeSessionSummary(sessions, now)
	assert.Equal(t, SessionSummary{TotalSessions: 4, UpcomingSessions: 2, TodaySessions: 2, CompletedSessions: 2}, summary)
}

func TestFilterAndSortSessions(t *testing.T) {
	algebra := "Algebra basics"
	geometry := "Geometry"
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ID: "first", GroupID: "g-1", DateTime: base, Topic: &algebra},
		{ID: "second", GroupID: "g-2", DateTime: base.Add(time.Hour), Topic: &geometry},
		{ID: "third", GroupID: "g-1", DateTime: base},
		{ID: "fourth", GroupID: "g-1", DateTime: base.Add(-time.Hour)},
	}
	names := map[string]string{"g-1": "Morning Class", "g-2": "Evening Class"}
	groupName := func(id string) string { return names[id] }

	all := FilterSessions(sessions, models.SessionFilter{}, groupName)
	SortSessions(all)
	assert.Equal(t, []string{"second", "first", "third", "fourth"}, ids(all))

	byGroup := FilterSessions(sessions, models.SessionFilter{GroupID: "g-1"}, groupName)
	assert.Equal(t, []string{"first", "third", "fourth"}, ids(byGroup))

	byTopic := FilterSessions(sessions, models.SessionFilter{Search: "ALGEBRA"}, groupName)
	assert.Equal(t, []string{"first"}, ids(byTopic))

	byGroupName := FilterSessions(sessions, models.SessionFilter{Search: "evening"}, groupName)
	assert.Equal(t, []string{"second"}, ids(byGroupName))

	none := FilterSessions(sessions, models.SessionFilter{GroupID: "g-2", Search: "morning"}, groupName)
	assert.Empty(t, none)
}

func TestSortSessionsIsStable(t *testing.T) {
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []models.Session{{ID: "a", DateTime: at}, {ID: "b", DateTime: at}, {ID: "c", DateTime: at}}
	SortSessions(sessions)
	assert.Equal(t, []string{"a", "b", "c"}, ids(sessions))
}

func TestPerformanceBreakdownAndCoverage(t *testing.T) {
	reports := []models.SessionReport{
		{StudentID: "a", Performance: models.PerformanceGood},
		{StudentID: "b", Performance: models.PerformanceGood},
		{StudentID: "c", Performance: models.PerformancePoor},
	}
	breakdown := ComputePerformanceBreakdown(reports)
	require.Len(t, breakdown, 5)
	assert.Equal(t, PerformanceBreakdown{Level: models.PerformanceExcellent, Count: 0}, breakdown[0])
	assert.Equal(t, PerformanceBreakdown{Level: models.PerformanceGood, Count: 2}, breakdown[1])
	assert.Equal(t, PerformanceBreakdown{Level: models.PerformancePoor, Count: 1}, breakdown[4])

	assert.Equal(t, 75.0, ReportCoverage(roster("a", "b", "c", "d"), reports))
	assert.Equal(t, 0.0, ReportCoverage(nil, reports))
}

func ids(sessions []models.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
