package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/store"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

const sampleSeed = `
groups:
  - id: g-1
    name: Group A
students:
  - id: s-1
    full_name: Ayu Lestari
    group_id: g-1
    parent_phone: "+62 811 000"
  - id: s-2
    full_name: Budi Santoso
    group_id: g-1
sessions:
  - group_id: g-1
    date_time: "2024-03-11T09:00"
    topic: Fractions
    attendance:
      - student_id: s-1
        status: present
    reports:
      - student_id: s-1
        performance: good
        strengths: Careful work
`

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndApply(t *testing.T) {
	file, err := Load(writeSeed(t, "seed.yaml", sampleSeed))
	require.NoError(t, err)
	require.Len(t, file.Students, 2)
	assert.Equal(t, "Ayu Lestari", file.Students[0].FullName)

	st := store.New()
	ctx := context.Background()
	summary, err := Apply(ctx, st, file, time.UTC, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Groups: 1, Students: 2, Sessions: 1, Attendance: 1, Reports: 1}, summary)

	require.NoError(t, st.View(ctx, func(r store.Reader) error {
		sessions := r.Sessions()
		require.Len(t, sessions, 1)
		assert.Equal(t, "Fractions", sessions[0].TopicText())
		assert.Equal(t, 9, sessions[0].DateTime.Hour())

		record, ok := r.AttendanceFor(sessions[0].ID, "s-1")
		require.True(t, ok)
		assert.Equal(t, models.AttendanceStatusPresent, record.Status)

		report, ok := r.SessionReportFor(sessions[0].ID, "s-1")
		require.True(t, ok)
		assert.Equal(t, models.PerformanceGood, report.Performance)

		student, ok := r.StudentByID("s-1")
		require.True(t, ok)
		require.NotNil(t, student.ParentPhone)
		assert.Nil(t, student.ContactInfo)
		return nil
	}))
}

func TestApplyIsAllOrNothing(t *testing.T) {
	file, err := Load(writeSeed(t, "seed.json", `{
  "groups": [{"id": "g-1", "name": "Group A"}],
  "students": [{"id": "s-1", "full_name": "Ayu", "group_id": "g-1"}],
  "sessions": [{"group_id": "g-1", "date_time": "2024-03-11T09:00", "attendance": [{"student_id": "s-1", "status": "late"}]}]
}`))
	require.NoError(t, err)

	st := store.New()
	ctx := context.Background()
	_, err = Apply(ctx, st, file, time.UTC, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "session #1")

	require.NoError(t, st.View(ctx, func(r store.Reader) error {
		assert.Empty(t, r.Groups())
		assert.Empty(t, r.Sessions())
		return nil
	}))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
