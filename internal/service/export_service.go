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
	"github.com/noah-isme/sma-classroom/pkg/export"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	DefaultFormat dto.ExportFormat
	ResultTTL     time.Duration
	Location      *time.Location
}

// ExportService renders a session with its attendance and reports into a stored document.
type ExportService struct {
	store     entityStore
	storage   fileStorage
	csv       documentRenderer
	pdf       documentRenderer
	validator requestValidator
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the package
// exporters.
func NewExportService(st entityStore, storage fileStorage, cfg ExportConfig, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, csv, pdf documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = dto.ExportFormatPDF
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		store:     st,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		validator: newRequestValidator(validate),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       st.Now,
	}
}

// ExportSession renders the session document and saves it under the export directory.
func (s *ExportService) ExportSession(ctx context.Context, req dto.ExportSessionRequest) (*dto.ExportSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	format := req.Format
	if format == "" {
		format = s.cfg.DefaultFormat
	}

	doc, session, group, err := s.BuildDocument(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	var renderer documentRenderer
	switch format {
	case dto.ExportFormatCSV:
		renderer = s.csv
	case dto.ExportFormatPDF:
		renderer = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}

	start := time.Now()
	payload, err := safeRender(renderer, doc)
	s.metrics.ObserveExport(string(format), time.Since(start), err)
	if err != nil {
		s.logger.Sugar().Errorw("session export failed", "session_id", session.ID, "format", format, "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render session document")
	}

	relPath, err := s.storage.Save(s.buildFilename(session, group, format), payload)
	if err != nil {
		s.logger.Sugar().Errorw("session export not stored", "session_id", session.ID, "error", err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store session document")
	}
	s.logger.Sugar().Infow("session exported", "session_id", session.ID, "path", relPath, "bytes", len(payload))

	return &dto.ExportSessionResponse{
		SessionID:    session.ID,
		RelativePath: relPath,
		Format:       format,
		Size:         len(payload),
		Session:      session,
	}, nil
}

// Cleanup removes exports older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to clean up exports")
	}
	if len(removed) > 0 {
		s.logger.Sugar().Infow("expired exports removed", "count", len(removed))
	}
	return removed, nil
}

// BuildDocument assembles the renderer-neutral document of a session: summary figures, the
// attendance sheet, the performance breakdown and one block per written report.
func (s *ExportService) BuildDocument(ctx context.Context, sessionID string) (export.Document, models.Session, models.Group, error) {
	var (
		doc     export.Document
		session models.Session
		group   models.Group
	)
	err := s.store.View(ctx, func(r store.Reader) error {
		var (
			roster []models.Student
			err    error
		)
		session, group, roster, err = sessionContext(r, sessionID)
		if err != nil {
			return err
		}
		records := r.AttendanceForSession(sessionID)
		reports := r.SessionReportsForSession(sessionID)
		doc = s.composeDocument(session, group, roster, records, reports)
		return nil
	})
	if err != nil {
		return export.Document{}, models.Session{}, models.Group{}, err
	}
	return doc, session, group, nil
}

func (s *ExportService) composeDocument(session models.Session, group models.Group, roster []models.Student, records []models.AttendanceRecord, reports []models.SessionReport) export.Document {
	attendance := stats.ComputeAttendanceStats(roster, records)
	when := session.DateTime.In(s.cfg.Location)

	doc := export.Document{
		Title:    "Session Report",
		Subtitle: fmt.Sprintf("%s - %s", group.Name, when.Format("Mon, 02 Jan 2006 15:04")),
		Summary: []export.Field{
			{Label: "Group", Value: group.Name},
			{Label: "Date", Value: when.Format("2006-01-02 15:04")},
			{Label: "Topic", Value: orDash(session.TopicText())},
			{Label: "Status", Value: sessionStatusLabel(session, s.now().In(s.cfg.Location))},
			{Label: "Present", Value: fmt.Sprintf("%d", attendance.Present)},
			{Label: "Absent", Value: fmt.Sprintf("%d", attendance.Absent)},
			{Label: "Excused", Value: fmt.Sprintf("%d", attendance.Excused)},
			{Label: "Students", Value: fmt.Sprintf("%d", attendance.Total)},
			{Label: "Attendance Rate", Value: fmt.Sprintf("%.2f%%", attendance.Rate)},
			{Label: "Reports Written", Value: fmt.Sprintf("%.0f%%", stats.ReportCoverage(roster, reports))},
		},
	}

	sheet := export.Dataset{Headers: []string{"Student", "Status", "Contact", "Parent Phone"}}
	for _, row := range stats.AttendanceSheet(roster, records) {
		sheet.Rows = append(sheet.Rows, map[string]string{
			"Student":      row.Student.FullName,
			"Status":       row.Status.Label(),
			"Contact":      orDash(deref(row.Student.ContactInfo)),
			"Parent Phone": orDash(deref(row.Student.ParentPhone)),
		})
	}

	breakdown := export.Dataset{Headers: []string{"Performance", "Students"}}
	for _, entry := range stats.ComputePerformanceBreakdown(reports) {
		breakdown.Rows = append(breakdown.Rows, map[string]string{
			"Performance": entry.Level.Label(),
			"Students":    fmt.Sprintf("%d", entry.Count),
		})
	}
	doc.Sections = []export.Section{
		{Heading: "Attendance", Dataset: sheet},
		{Heading: "Performance", Dataset: breakdown},
	}

	names := make(map[string]string, len(roster))
	for _, student := range roster {
		names[student.ID] = student.FullName
	}
	for _, report := range reports {
		name, ok := names[report.StudentID]
		if !ok {
			continue
		}
		doc.Blocks = append(doc.Blocks, export.Block{
			Heading: fmt.Sprintf("%s (%s)", name, report.Performance.Label()),
			Fields: []export.Field{
				{Label: "Strengths", Value: report.Strengths},
				{Label: "Areas for Improvement", Value: report.Improvements},
				{Label: "Notes", Value: report.Notes},
			},
		})
	}
	return doc
}

// safeRender converts a renderer panic into an error; gofpdf panics on some malformed input.
func safeRender(renderer documentRenderer, doc export.Document) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return renderer.RenderDocument(doc)
}

func (s *ExportService) buildFilename(session models.Session, group models.Group, format dto.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	date := session.DateTime.In(s.cfg.Location).Format("2006-01-02")
	return fmt.Sprintf("sessions/%s_%s_%s_%s.%s", date, sanitizeFilename(group.Name), sanitizeFilename(session.ID), timestamp, format)
}

const maxFilenameRunes = 100

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		return string(runes[:maxFilenameRunes])
	}
	return result
}

func sessionStatusLabel(session models.Session, now time.Time) string {
	switch {
	case session.IsToday(now) && session.IsUpcoming(now):
		return "Today"
	case session.IsUpcoming(now):
		return "Upcoming"
	default:
		return "Completed"
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
