package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom/internal/dto"
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/seed"
	"github.com/noah-isme/sma-classroom/internal/service"
	"github.com/noah-isme/sma-classroom/internal/store"
	"github.com/noah-isme/sma-classroom/pkg/config"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
	"github.com/noah-isme/sma-classroom/pkg/export"
	"github.com/noah-isme/sma-classroom/pkg/jobs"
	"github.com/noah-isme/sma-classroom/pkg/logger"
	"github.com/noah-isme/sma-classroom/pkg/storage"
)

func main() {
	exportAll := flag.Bool("export", false, "render every session into the export directory")
	sessionID := flag.String("session", "", "render a single session")
	format := flag.String("format", "", "export format (pdf or csv), defaults to EXPORT_FORMAT")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	loc := cfg.Location()
	st := newStore(loc)

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	files, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage unavailable", "dir", cfg.Export.StorageDir, "error", err)
	}

	validate := validator.New()
	bulkMode := models.BulkOperationMode(cfg.Attendance.BulkMode)
	sessions := service.NewSessionService(st, validate, metrics, logr, loc)
	attendance := service.NewAttendanceService(st, validate, metrics, logr, bulkMode)
	reports := service.NewSessionReportService(st, validate, metrics, logr, bulkMode)
	exports := service.NewExportService(st, files, service.ExportConfig{
		DefaultFormat: dto.ExportFormat(cfg.Export.Format),
		ResultTTL:     cfg.Export.ResultTTL,
		Location:      loc,
	}, validate, metrics, logr, export.NewCSVExporter(), export.NewPDFExporter())

	if cfg.SeedFile != "" {
		file, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logr.Sugar().Fatalw("failed to read seed", "file", cfg.SeedFile, "error", err)
		}
		if _, err := seed.Apply(ctx, st, file, loc, logr); err != nil {
			logr.Sugar().Fatalw("failed to apply seed", "file", cfg.SeedFile, "error", err)
		}
	}

	list, err := sessions.List(ctx, dto.SessionListRequest{})
	if err != nil {
		logr.Sugar().Fatalw("failed to list sessions", "error", err)
	}
	logr.Sugar().Infow("sessions loaded",
		"total", list.Summary.TotalSessions,
		"upcoming", list.Summary.UpcomingSessions,
		"today", list.Summary.TodaySessions,
		"completed", list.Summary.CompletedSessions,
	)
	logSessions(ctx, attendance, reports, list.Sessions, loc, logr)

	var targets []string
	switch {
	case *sessionID != "":
		targets = []string{*sessionID}
	case *exportAll:
		for _, item := range list.Sessions {
			targets = append(targets, item.ID)
		}
	}
	if len(targets) > 0 {
		runExports(ctx, exports, targets, dto.ExportFormat(*format), cfg, logr)
	}

	if removed, err := exports.Cleanup(0); err != nil {
		logr.Sugar().Warnw("export cleanup failed", "error", err)
	} else if len(removed) > 0 {
		logr.Sugar().Infow("stale exports removed", "files", removed)
	}

	if metrics != nil {
		snapshot := metrics.Snapshot()
		logr.Sugar().Infow("metrics",
			"mutations", snapshot.Mutations,
			"failed_mutations", snapshot.FailedMutations,
			"exports", snapshot.Exports,
			"average_export_ms", snapshot.AverageExportMs,
		)
	}
}

// newStore builds the in-memory store with its clock in the classroom zone, so "today" follows
// TIMEZONE rather than the host.
func newStore(loc *time.Location) *store.MemoryStore {
	return store.New(store.WithClock(func() time.Time { return time.Now().In(loc) }))
}

// logSessions writes one line per session with the attendance sheet counts and report coverage.
func logSessions(ctx context.Context, attendance *service.AttendanceService, reports *service.SessionReportService, items []dto.SessionListItem, loc *time.Location, logr *zap.Logger) {
	for _, item := range items {
		sheet, err := attendance.SessionAttendance(ctx, item.ID)
		if err != nil {
			logr.Sugar().Warnw("session attendance unavailable", "session_id", item.ID, "error", err)
			continue
		}
		overview, err := reports.ForSession(ctx, item.ID)
		if err != nil {
			logr.Sugar().Warnw("session reports unavailable", "session_id", item.ID, "error", err)
			continue
		}
		logr.Sugar().Infow("session",
			"session_id", item.ID,
			"group", sheet.Group.Name,
			"date_time", item.DateTime.In(loc),
			"topic", item.TopicText(),
			"present", sheet.Stats.Present,
			"absent", sheet.Stats.Absent,
			"excused", sheet.Stats.Excused,
			"total", sheet.Stats.Total,
			"rate", sheet.Stats.Rate,
			"report_coverage", overview.Coverage,
		)
	}
}

// runExports renders sessions on the export pool. Only internal failures, such as a full
// disk, are retried.
func runExports(ctx context.Context, exports *service.ExportService, sessionIDs []string, format dto.ExportFormat, cfg *config.Config, logr *zap.Logger) {
	pool := jobs.NewPool("session-export", func(ctx context.Context, task jobs.Task) error {
		resp, err := exports.ExportSession(ctx, dto.ExportSessionRequest{SessionID: task.ID, Format: format})
		if err != nil {
			if appErrors.FromError(err).Code != appErrors.ErrInternal.Code {
				return jobs.Permanent(err)
			}
			return err
		}
		logr.Sugar().Infow("export stored", "session_id", task.ID, "path", resp.RelativePath, "bytes", resp.Size)
		return nil
	}, jobs.PoolConfig{
		Workers:    cfg.Export.Workers,
		MaxRetries: cfg.Export.MaxRetries,
		Logger:     logr,
	})

	tasks := make([]jobs.Task, len(sessionIDs))
	for i, id := range sessionIDs {
		tasks[i] = jobs.Task{ID: id, Kind: "session_export"}
	}
	failed := 0
	for _, result := range pool.Run(ctx, tasks) {
		if result.Err != nil {
			failed++
		}
	}
	logr.Sugar().Infow("exports finished", "sessions", len(tasks), "failed", failed)
}
