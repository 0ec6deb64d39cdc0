package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionTimeClassification(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	morning := Session{DateTime: now.Add(-3 * time.Hour)}
	evening := Session{DateTime: now.Add(6 * time.Hour)}
	yesterday := Session{DateTime: now.AddDate(0, 0, -1)}

	assert.True(t, morning.IsToday(now))
	assert.True(t, morning.IsCompleted(now))
	assert.False(t, morning.IsUpcoming(now))

	assert.True(t, evening.IsToday(now))
	assert.True(t, evening.IsUpcoming(now))

	assert.False(t, yesterday.IsToday(now))
	assert.True(t, yesterday.IsCompleted(now))

	assert.True(t, Session{DateTime: now}.IsCompleted(now))
}

func TestSessionIsTodayUsesNowLocation(t *testing.T) {
	plus7 := time.FixedZone("UTC+7", 7*60*60)
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, plus7)
	// 2024-03-09 20:00 UTC is 2024-03-10 03:00 at UTC+7.
	session := Session{DateTime: time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)}
	assert.True(t, session.IsToday(now))
}

func TestParseAttendanceStatus(t *testing.T) {
	status, ok := ParseAttendanceStatus(" Present ")
	assert.True(t, ok)
	assert.Equal(t, AttendanceStatusPresent, status)
	assert.Equal(t, "Present", status.Label())

	_, ok = ParseAttendanceStatus("late")
	assert.False(t, ok)
	assert.Equal(t, "", AttendanceStatus("late").Label())
}

func TestParsePerformanceLevel(t *testing.T) {
	level, ok := ParsePerformanceLevel("NEEDS_IMPROVEMENT")
	assert.True(t, ok)
	assert.Equal(t, "Needs Improvement", level.Label())

	for _, l := range PerformanceLevels() {
		assert.True(t, l.Valid())
		assert.NotEmpty(t, l.Label())
	}
	_, ok = ParsePerformanceLevel("outstanding")
	assert.False(t, ok)
}
