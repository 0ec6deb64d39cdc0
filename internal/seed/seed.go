// Package seed preloads the store from a yaml or json file.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/service"
	"github.com/noah-isme/sma-classroom/internal/store"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

// File is the decoded seed document. Sessions carry their own attendance and reports
// because session ids are assigned by the store.
type File struct {
	Groups   []Group   `mapstructure:"groups"`
	Students []Student `mapstructure:"students"`
	Sessions []Session `mapstructure:"sessions"`
}

// Group seeds a group.
type Group struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// Student seeds a student.
type Student struct {
	ID          string `mapstructure:"id"`
	FullName    string `mapstructure:"full_name"`
	GroupID     string `mapstructure:"group_id"`
	ContactInfo string `mapstructure:"contact_info"`
	ParentPhone string `mapstructure:"parent_phone"`
}

// Session seeds a session with its recorded attendance and reports.
type Session struct {
	GroupID    string       `mapstructure:"group_id"`
	DateTime   string       `mapstructure:"date_time"`
	Topic      string       `mapstructure:"topic"`
	Attendance []Attendance `mapstructure:"attendance"`
	Reports    []Report     `mapstructure:"reports"`
}

// Attendance seeds one attendance record.
type Attendance struct {
	StudentID string `mapstructure:"student_id"`
	Status    string `mapstructure:"status"`
}

// Report seeds one session report.
type Report struct {
	StudentID    string `mapstructure:"student_id"`
	Performance  string `mapstructure:"performance"`
	Strengths    string `mapstructure:"strengths"`
	Improvements string `mapstructure:"improvements"`
	Notes        string `mapstructure:"notes"`
}

// Summary counts what was loaded.
type Summary struct {
	Groups     int
	Students   int
	Sessions   int
	Attendance int
	Reports    int
}

// Load reads a seed file; the format follows the file extension.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file File
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &file, nil
}

// Apply writes the whole file in one transaction; any invalid entry rejects the seed.
// Local date-times are read in loc.
func Apply(ctx context.Context, st *store.MemoryStore, file *File, loc *time.Location, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var summary Summary
	if file == nil {
		return summary, nil
	}
	err := st.Update(ctx, func(tx *store.Tx) error {
		summary = Summary{}
		for _, g := range file.Groups {
			if _, err := tx.CreateGroup(models.Group{ID: g.ID, Name: g.Name}); err != nil {
				return seedError(err, "group %q", g.ID)
			}
			summary.Groups++
		}
		for _, s := range file.Students {
			student := models.Student{
				ID:          s.ID,
				FullName:    s.FullName,
				GroupID:     s.GroupID,
				ContactInfo: optional(s.ContactInfo),
				ParentPhone: optional(s.ParentPhone),
			}
			if _, err := tx.CreateStudent(student); err != nil {
				return seedError(err, "student %q", s.ID)
			}
			summary.Students++
		}
		for i, s := range file.Sessions {
			if err := applySession(tx, s, loc, &summary); err != nil {
				return seedError(err, "session #%d", i+1)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	logger.Sugar().Infow("seed applied",
		"groups", summary.Groups,
		"students", summary.Students,
		"sessions", summary.Sessions,
		"attendance", summary.Attendance,
		"reports", summary.Reports,
	)
	return summary, nil
}

func applySession(tx *store.Tx, s Session, loc *time.Location, summary *Summary) error {
	dateTime, err := service.ParseSessionDateTime(s.DateTime, loc)
	if err != nil {
		return err
	}
	session, err := tx.CreateSession(s.GroupID, dateTime, optional(s.Topic))
	if err != nil {
		return err
	}
	summary.Sessions++
	for _, a := range s.Attendance {
		status, ok := models.ParseAttendanceStatus(a.Status)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", a.Status))
		}
		if _, err := tx.UpsertAttendance(session.ID, a.StudentID, status); err != nil {
			return err
		}
		summary.Attendance++
	}
	for _, r := range s.Reports {
		level, ok := models.ParsePerformanceLevel(r.Performance)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid performance level %q", r.Performance))
		}
		fields := models.SessionReportFields{
			Performance:  level,
			Strengths:    r.Strengths,
			Improvements: r.Improvements,
			Notes:        r.Notes,
		}
		if _, err := tx.UpsertSessionReport(session.ID, r.StudentID, fields); err != nil {
			return err
		}
		summary.Reports++
	}
	return nil
}

func seedError(err error, format string, args ...any) error {
	appErr := appErrors.FromError(err)
	return appErrors.Clone(appErr, fmt.Sprintf("seed %s: %s", fmt.Sprintf(format, args...), appErr.Message))
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
