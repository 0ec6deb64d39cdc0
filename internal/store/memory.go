// Package store holds the authoritative in-memory tables for groups, students, sessions,
// attendance records and session reports. State is only changed inside Update
// transactions and only read inside View callbacks.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-classroom/internal/models"
)

type row[T any] struct {
	seq   uint64
	value T
}

type pairKey struct {
	sessionID string
	studentID string
}

type state struct {
	groups     map[string]row[models.Group]
	students   map[string]row[models.Student]
	sessions   map[string]row[models.Session]
	attendance map[pairKey]row[models.AttendanceRecord]
	reports    map[pairKey]row[models.SessionReport]
}

func newState() state {
	return state{
		groups:     map[string]row[models.Group]{},
		students:   map[string]row[models.Student]{},
		sessions:   map[string]row[models.Session]{},
		attendance: map[pairKey]row[models.AttendanceRecord]{},
		reports:    map[pairKey]row[models.SessionReport]{},
	}
}

func (s state) clone() state {
	return state{
		groups:     cloneTable(s.groups),
		students:   cloneTable(s.students),
		sessions:   cloneTable(s.sessions),
		attendance: cloneTable(s.attendance),
		reports:    cloneTable(s.reports),
	}
}

func cloneTable[K comparable, T any](in map[K]row[T]) map[K]row[T] {
	out := make(map[K]row[T], len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Option customises a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// MemoryStore is the entity store. Writers get a private copy of the state and the copy
// replaces the live state only when the transaction function succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state state
	seq   uint64
	now   func() time.Time
	newID func() string
}

// New constructs an empty store.
func New(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		state: newState(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update runs fn against a staged copy of the state and commits it when fn returns nil.
func (s *MemoryStore) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	tx := &Tx{
		Reader: Reader{st: &staged},
		now:    s.now(),
		seq:    s.seq,
		newID:  s.newID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = staged
	s.seq = tx.seq
	return nil
}

// View runs fn against the committed state under a read lock.
func (s *MemoryStore) View(ctx context.Context, fn func(r Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(Reader{st: &s.state})
}

// Now exposes the store clock so callers classify sessions against the same time source.
func (s *MemoryStore) Now() time.Time {
	return s.now()
}

func sortedValues[K comparable, T any](table map[K]row[T], keep func(T) bool) []T {
	rows := make([]row[T], 0, len(table))
	for _, r := range table {
		if keep == nil || keep(r.value) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.value
	}
	return out
}
