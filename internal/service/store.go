package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-classroom/internal/dto"
	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/store"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

type entityStore interface {
	Update(ctx context.Context, fn func(tx *store.Tx) error) error
	View(ctx context.Context, fn func(r store.Reader) error) error
	Now() time.Time
}

// sessionContext resolves a session with its group and roster inside one read.
func sessionContext(r store.Reader, sessionID string) (models.Session, models.Group, []models.Student, error) {
	session, ok := r.SessionByID(sessionID)
	if !ok {
		return models.Session{}, models.Group{}, nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	group, ok := r.GroupByID(session.GroupID)
	if !ok {
		return models.Session{}, models.Group{}, nil, appErrors.Clone(appErrors.ErrInternal, "session group is missing")
	}
	return session, group, r.StudentsInGroup(group.ID), nil
}

func resolveBulkMode(raw string, fallback models.BulkOperationMode) models.BulkOperationMode {
	mode := models.BulkOperationMode(strings.TrimSpace(raw))
	if mode.Valid() {
		return mode
	}
	if fallback.Valid() {
		return fallback
	}
	return models.BulkModeAtomic
}

func checkDuplicateStudents(studentIDs []string) error {
	seen := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if _, dup := seen[id]; dup {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s appears more than once in the batch", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// runBulk applies one write per student. In atomic mode every write shares one transaction
// and the first failure rejects the batch; in partialOnError mode each write commits on its
// own and failures are collected.
func runBulk(ctx context.Context, st entityStore, mode models.BulkOperationMode, studentIDs []string, apply func(tx *store.Tx, i int) error) (*dto.BulkResult, error) {
	if err := checkDuplicateStudents(studentIDs); err != nil {
		return nil, err
	}
	result := &dto.BulkResult{Processed: len(studentIDs)}

	if mode == models.BulkModeAtomic {
		err := st.Update(ctx, func(tx *store.Tx) error {
			for i, studentID := range studentIDs {
				if err := apply(tx, i); err != nil {
					appErr := appErrors.FromError(err)
					return appErrors.Clone(appErr, fmt.Sprintf("student %s: %s", studentID, appErr.Message))
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.Success = len(studentIDs)
		return result, nil
	}

	for i, studentID := range studentIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := st.Update(ctx, func(tx *store.Tx) error { return apply(tx, i) })
		if err != nil {
			result.Failures = append(result.Failures, models.BulkItemFailure{
				StudentID: studentID,
				Reason:    appErrors.FromError(err).Message,
			})
			continue
		}
		result.Success++
	}
	return result, nil
}
