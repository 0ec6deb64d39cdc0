package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom/internal/dto"
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/store"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

func strPtr(v string) *string {
	return &v
}

func TestParseSessionDateTime(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	got, err := ParseSessionDateTime("2024-03-11T09:30", jakarta)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 11, 2, 30, 0, 0, time.UTC)))

	got, err = ParseSessionDateTime("2024-03-11T09:30:00Z", jakarta)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)))

	_, err = ParseSessionDateTime("next tuesday", jakarta)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = ParseSessionDateTime("  ", nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSessionServiceCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewSessionService(f.store, nil, f.metrics, zap.NewNop(), time.UTC)
	ctx := context.Background()

	session, err := svc.Create(ctx, dto.CreateSessionRequest{GroupID: "g-1", DateTime: "2024-03-12T10:00", Topic: strPtr("  Decimals ")})
	require.NoError(t, err)
	assert.Equal(t, "Decimals", *session.Topic)
	assert.Equal(t, fixedNow, session.CreatedAt)

	_, err = svc.Create(ctx, dto.CreateSessionRequest{GroupID: "missing", DateTime: "2024-03-12T10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, dto.CreateSessionRequest{GroupID: "g-1", DateTime: "tomorrow"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, dto.CreateSessionRequest{DateTime: "2024-03-12T10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.mutations.WithLabelValues("session.create", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.mutations.WithLabelValues("session.create", appErrors.ErrValidation.Code)))
}

func TestSessionServiceUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := NewSessionService(f.store, nil, f.metrics, nil, nil)
	attendance := NewAttendanceService(f.store, nil, f.metrics, nil, "")
	ctx := context.Background()

	updated, err := svc.Update(ctx, f.sessionID, dto.UpdateSessionRequest{GroupID: "g-1", DateTime: "2024-03-09T10:00"})
	require.NoError(t, err)
	assert.Nil(t, updated.Topic)
	assert.Equal(t, 10, updated.DateTime.Hour())

	_, err = svc.Update(ctx, "missing", dto.UpdateSessionRequest{GroupID: "g-1", DateTime: "2024-03-09T10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = attendance.Mark(ctx, dto.MarkAttendanceRequest{SessionID: f.sessionID, StudentID: f.students[0], Status: "present"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, f.sessionID, dto.UpdateSessionRequest{GroupID: "g-2", DateTime: "2024-03-09T10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	require.NoError(t, svc.Delete(ctx, f.sessionID))
	_, err = svc.Get(ctx, f.sessionID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = attendance.SessionAttendance(ctx, f.sessionID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.True(t, errors.Is(svc.Delete(ctx, f.sessionID), appErrors.ErrNotFound))
}

func TestSessionServiceList(t *testing.T) {
	f := newFixture(t)
	svc := NewSessionService(f.store, nil, nil, nil, time.UTC)
	attendance := NewAttendanceService(f.store, nil, nil, nil, "")
	ctx := context.Background()

	for _, req := range []dto.CreateSessionRequest{
		{GroupID: "g-1", DateTime: "2024-03-10T08:00", Topic: strPtr("Geometry")},
		{GroupID: "g-1", DateTime: "2024-03-10T15:00"},
		{GroupID: "g-2", DateTime: "2024-03-20T09:00", Topic: strPtr("Reading")},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}
	_, err := attendance.BulkMark(ctx, dto.BulkMarkAttendanceRequest{
		SessionID: f.sessionID,
		Items: []dto.BulkAttendanceItem{
			{StudentID: f.students[0], Status: "present"},
			{StudentID: f.students[1], Status: "present"},
			{StudentID: f.students[2], Status: "excused"},
		},
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, dto.SessionListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 4)
	assert.Equal(t, "g-2", resp.Sessions[0].GroupID)
	assert.Equal(t, "Group B", resp.Sessions[0].GroupName)
	assert.Equal(t, f.sessionID, resp.Sessions[3].ID)
	assert.Equal(t, 2, resp.Sessions[3].Attendance.Present)
	assert.Equal(t, 1, resp.Sessions[3].Attendance.Absent)
	assert.Equal(t, 50.0, resp.Sessions[3].Attendance.Rate)
	assert.Equal(t, 4, resp.Summary.TotalSessions)
	assert.Equal(t, 2, resp.Summary.UpcomingSessions)
	assert.Equal(t, 2, resp.Summary.TodaySessions)
	assert.Equal(t, 2, resp.Summary.CompletedSessions)

	resp, err = svc.List(ctx, dto.SessionListRequest{Search: "group b"})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, 1, resp.Summary.TotalSessions)

	resp, err = svc.List(ctx, dto.SessionListRequest{GroupID: "g-1", Search: "FRACT"})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 1)
	assert.Equal(t, f.sessionID, resp.Sessions[0].ID)
}

func TestSessionServiceListUsesServiceZone(t *testing.T) {
	kiritimati := time.FixedZone("LINT", 14*60*60)
	// 2024-03-11 08:30 in the service zone while the server clock is still on the 10th.
	st := store.New(store.WithClock(func() time.Time { return time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC) }))
	ctx := context.Background()
	require.NoError(t, st.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.CreateGroup(models.Group{ID: "g-1", Name: "Group A"})
		return err
	}))
	svc := NewSessionService(st, nil, nil, nil, kiritimati)

	later, err := svc.Create(ctx, dto.CreateSessionRequest{GroupID: "g-1", DateTime: "2024-03-11T14:30"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateSessionRequest{GroupID: "g-1", DateTime: "2024-03-10T20:00"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, dto.SessionListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, later.ID, resp.Sessions[0].ID)
	assert.True(t, resp.Sessions[0].IsToday)
	assert.True(t, resp.Sessions[0].IsUpcoming)
	assert.False(t, resp.Sessions[1].IsToday)
	assert.Equal(t, 1, resp.Summary.TodaySessions)
	assert.Equal(t, 1, resp.Summary.UpcomingSessions)
	assert.Equal(t, 1, resp.Summary.CompletedSessions)
}
