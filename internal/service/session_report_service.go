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

// SessionReportService writes and reads per-student session reports.
type SessionReportService struct {
	store       entityStore
	validator   requestValidator
	metrics     *MetricsService
	logger      *zap.Logger
	defaultMode models.BulkOperationMode
}

// NewSessionReportService constructs the report service.
func NewSessionReportService(st entityStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, defaultMode models.BulkOperationMode) *SessionReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !defaultMode.Valid() {
		defaultMode = models.BulkModeAtomic
	}
	return &SessionReportService{
		store:       st,
		validator:   newRequestValidator(validate),
		metrics:     metrics,
		logger:      logger,
		defaultMode: defaultMode,
	}
}

// Upsert saves a student's report, updating the existing one in place.
func (s *SessionReportService) Upsert(ctx context.Context, req dto.UpsertSessionReportRequest) (*models.SessionReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	level, _ := models.ParsePerformanceLevel(req.Performance)
	fields := models.SessionReportFields{
		Performance:  level,
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
		Notes:        req.Notes,
	}

	var report models.SessionReport
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		report, err = tx.UpsertSessionReport(req.SessionID, req.StudentID, fields)
		return err
	})
	s.metrics.RecordMutation("report.upsert", err)
	if err != nil {
		s.logger.Sugar().Warnw("session report rejected", "session_id", req.SessionID, "student_id", req.StudentID, "error", err)
		return nil, err
	}
	return &report, nil
}

// BulkUpsert saves reports for several students of one session.
func (s *SessionReportService) BulkUpsert(ctx context.Context, req dto.BulkUpsertReportsRequest) (*dto.BulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	mode := resolveBulkMode(req.Mode, s.defaultMode)

	studentIDs := make([]string, len(req.Items))
	fields := make([]models.SessionReportFields, len(req.Items))
	for i, item := range req.Items {
		level, _ := models.ParsePerformanceLevel(item.Performance)
		studentIDs[i] = item.StudentID
		fields[i] = models.SessionReportFields{
			Performance:  level,
			Strengths:    item.Strengths,
			Improvements: item.Improvements,
			Notes:        item.Notes,
		}
	}

	result, err := runBulk(ctx, s.store, mode, studentIDs, func(tx *store.Tx, i int) error {
		_, err := tx.UpsertSessionReport(req.SessionID, studentIDs[i], fields[i])
		return err
	})
	s.metrics.RecordMutation("report.bulk_upsert", err)
	if err != nil {
		s.logger.Sugar().Warnw("bulk reports rejected", "session_id", req.SessionID, "mode", mode, "error", err)
		return nil, err
	}
	return result, nil
}

// Get returns the report for a (session, student) pair.
func (s *SessionReportService) Get(ctx context.Context, sessionID, studentID string) (*models.SessionReport, bool, error) {
	var (
		report models.SessionReport
		found  bool
	)
	err := s.store.View(ctx, func(r store.Reader) error {
		report, found = r.SessionReportFor(sessionID, studentID)
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &report, true, nil
}

// ForSession lists the session roster with each student's report, the performance
// breakdown and the share of students with a report.
func (s *SessionReportService) ForSession(ctx context.Context, sessionID string) (*dto.SessionReportsResponse, error) {
	var resp dto.SessionReportsResponse
	err := s.store.View(ctx, func(r store.Reader) error {
		session, group, roster, err := sessionContext(r, sessionID)
		if err != nil {
			return err
		}
		reports := r.SessionReportsForSession(sessionID)
		byStudent := make(map[string]models.SessionReport, len(reports))
		for _, report := range reports {
			byStudent[report.StudentID] = report
		}
		rows := make([]dto.StudentReportRow, 0, len(roster))
		for _, student := range roster {
			row := dto.StudentReportRow{Student: student}
			if report, ok := byStudent[student.ID]; ok {
				report := report
				row.Report = &report
			}
			rows = append(rows, row)
		}
		resp = dto.SessionReportsResponse{
			Session:   session,
			Group:     group,
			Rows:      rows,
			Breakdown: stats.ComputePerformanceBreakdown(reports),
			Coverage:  stats.ReportCoverage(roster, reports),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
