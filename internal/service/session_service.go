package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom/internal/dto"
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/stats"
	"github.com/noah-isme/sma-classroom/internal/store"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

var sessionDateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseSessionDateTime accepts RFC3339 or a zone-less local date-time interpreted in loc.
func ParseSessionDateTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "session date and time is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range sessionDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid session date and time %q", raw))
}

// SessionService schedules, edits, removes and lists sessions.
type SessionService struct {
	store     entityStore
	validator requestValidator
	metrics   *MetricsService
	logger    *zap.Logger
	location  *time.Location
}

// NewSessionService constructs the session service. Local date-times are read in loc.
func NewSessionService(st entityStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SessionService{
		store:     st,
		validator: newRequestValidator(validate),
		metrics:   metrics,
		logger:    logger,
		location:  loc,
	}
}

// Create schedules a new session.
func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	dateTime, err := ParseSessionDateTime(req.DateTime, s.location)
	if err != nil {
		return nil, err
	}

	var created models.Session
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		created, err = tx.CreateSession(req.GroupID, dateTime, req.Topic)
		return err
	})
	s.metrics.RecordMutation("session.create", err)
	if err != nil {
		return nil, err
	}
	s.logger.Sugar().Infow("session scheduled", "session_id", created.ID, "group_id", created.GroupID, "date_time", created.DateTime)
	return &created, nil
}

// Update edits the group, date-time and topic of a session.
func (s *SessionService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	dateTime, err := ParseSessionDateTime(req.DateTime, s.location)
	if err != nil {
		return nil, err
	}

	var updated models.Session
	err = s.store.Update(ctx, func(tx *store.Tx) error {
		updated, err = tx.UpdateSession(id, req.GroupID, dateTime, req.Topic)
		return err
	})
	s.metrics.RecordMutation("session.update", err)
	if err != nil {
		return nil, err
	}
	s.logger.Sugar().Infow("session updated", "session_id", updated.ID)
	return &updated, nil
}

// Delete removes a session with its attendance records and reports.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.DeleteSession(id)
	})
	s.metrics.RecordMutation("session.delete", err)
	if err != nil {
		return err
	}
	s.logger.Sugar().Infow("session deleted", "session_id", id)
	return nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.store.View(ctx, func(r store.Reader) error {
		found, ok := r.SessionByID(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		session = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns the filtered sessions, latest first, each with its attendance figures. The
// summary counts the filtered sessions; "today" is the current date in the service location.
func (s *SessionService) List(ctx context.Context, req dto.SessionListRequest) (*dto.SessionListResponse, error) {
	now := s.store.Now().In(s.location)
	resp := &dto.SessionListResponse{Sessions: []dto.SessionListItem{}}
	err := s.store.View(ctx, func(r store.Reader) error {
		groupName := func(groupID string) string {
			g, _ := r.GroupByID(groupID)
			return g.Name
		}
		sessions := stats.FilterSessions(r.Sessions(), models.SessionFilter{GroupID: req.GroupID, Search: req.Search}, groupName)
		stats.SortSessions(sessions)

		rosters := make(map[string][]models.Student)
		for _, session := range sessions {
			roster, ok := rosters[session.GroupID]
			if !ok {
				roster = r.StudentsInGroup(session.GroupID)
				rosters[session.GroupID] = roster
			}
			resp.Sessions = append(resp.Sessions, dto.SessionListItem{
				Session:    session,
				GroupName:  groupName(session.GroupID),
				Attendance: stats.ComputeAttendanceStats(roster, r.AttendanceForSession(session.ID)),
				Reports:    len(r.SessionReportsForSession(session.ID)),
				IsToday:    session.IsToday(now),
				IsUpcoming: session.IsUpcoming(now),
			})
		}
		resp.Summary = stats.ComputeSessionSummary(sessions, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
