package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom/internal/dto"
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/stats"
	"github.com/noah-isme/sma-classroom/internal/store"
)

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	store       entityStore
	validator   requestValidator
	metrics     *MetricsService
	logger      *zap.Logger
	defaultMode models.BulkOperationMode
}

// NewAttendanceService constructs the attendance service. defaultMode applies to bulk
// requests that do not name a mode.
func NewAttendanceService(st entityStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, defaultMode models.BulkOperationMode) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultMode.Valid() {
		defaultMode = models.BulkModeAtomic
	}
	return &AttendanceService{
		store:       st,
		validator:   newRequestValidator(validate),
		metrics:     metrics,
		logger:      logger,
		defaultMode: defaultMode,
	}
}

// Mark records one student's status, replacing any earlier record.
func (s *AttendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	status, _ := models.ParseAttendanceStatus(req.Status)

	var record models.AttendanceRecord
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		record, err = tx.UpsertAttendance(req.SessionID, req.StudentID, status)
		return err
	})
	s.metrics.RecordMutation("attendance.mark", err)
	if err != nil {
		s.logger.Sugar().Warnw("attendance rejected", "session_id", req.SessionID, "student_id", req.StudentID, "error", err)
		return nil, err
	}
	return &record, nil
}

// BulkMark saves the attendance sheet of a session.
func (s *AttendanceService) BulkMark(ctx context.Context, req dto.BulkMarkAttendanceRequest) (*dto.BulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	mode := resolveBulkMode(req.Mode, s.defaultMode)

	studentIDs := make([]string, len(req.Items))
	statuses := make([]models.AttendanceStatus, len(req.Items))
	for i, item := range req.Items {
		studentIDs[i] = item.StudentID
		statuses[i], _ = models.ParseAttendanceStatus(item.Status)
	}

	result, err := runBulk(ctx, s.store, mode, studentIDs, func(tx *store.Tx, i int) error {
		_, err := tx.UpsertAttendance(req.SessionID, studentIDs[i], statuses[i])
		return err
	})
	s.metrics.RecordMutation("attendance.bulk_mark", err)
	if err != nil {
		s.logger.Sugar().Warnw("bulk attendance rejected", "session_id", req.SessionID, "mode", mode, "error", err)
		return nil, err
	}
	if len(result.Failures) > 0 {
		s.logger.Sugar().Warnw("bulk attendance partially applied", "session_id", req.SessionID, "success", result.Success, "failed", len(result.Failures))
	}
	return result, nil
}

// SessionAttendance returns the attendance sheet of a session with its stats. Students
// without a record are listed with the default absent status.
func (s *AttendanceService) SessionAttendance(ctx context.Context, sessionID string) (*dto.SessionAttendanceResponse, error) {
	var resp dto.SessionAttendanceResponse
	err := s.store.View(ctx, func(r store.Reader) error {
		session, group, roster, err := sessionContext(r, sessionID)
		if err != nil {
			return err
		}
		records := r.AttendanceForSession(sessionID)
		resp = dto.SessionAttendanceResponse{
			Session: session,
			Group:   group,
			Sheet:   stats.AttendanceSheet(roster, records),
			Stats:   stats.ComputeAttendanceStats(roster, records),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
