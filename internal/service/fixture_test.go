package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-classroom/internal/models"
	"github.com/noah-isme/sma-classroom/internal/store"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *store.MemoryStore
	metrics   *MetricsService
	students  []string
	outsider  string
	sessionID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	n := 0
	st := store.New(
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	f := &fixture{store: st, metrics: NewMetricsService()}
	err := st.Update(context.Background(), func(tx *store.Tx) error {
		if _, err := tx.CreateGroup(models.Group{ID: "g-1", Name: "Group A"}); err != nil {
			return err
		}
		if _, err := tx.CreateGroup(models.Group{ID: "g-2", Name: "Group B"}); err != nil {
			return err
		}
		for i, name := range []string{"Ayu", "Budi", "Citra", "Dewi"} {
			student, err := tx.CreateStudent(models.Student{ID: fmt.Sprintf("s-%d", i+1), FullName: name, GroupID: "g-1"})
			if err != nil {
				return err
			}
			f.students = append(f.students, student.ID)
		}
		outsider, err := tx.CreateStudent(models.Student{ID: "s-9", FullName: "Eko", GroupID: "g-2"})
		if err != nil {
			return err
		}
		f.outsider = outsider.ID
		topic := "Fractions"
		session, err := tx.CreateSession("g-1", time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC), &topic)
		if err != nil {
			return err
		}
		f.sessionID = session.ID
		return nil
	})
	require.NoError(t, err)
	return f
}
