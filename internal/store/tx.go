package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-classroom/internal/models"
	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

// Tx is a write transaction. It reads its own staged writes.
type Tx struct {
	Reader
	now   time.Time
	seq   uint64
	newID func() string
}

func (tx *Tx) nextSeq() uint64 {
	tx.seq++
	return tx.seq
}

// Now is the timestamp applied to every write of the transaction.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// CreateGroup inserts a group, assigning an id when none is given.
func (tx *Tx) CreateGroup(group models.Group) (models.Group, error) {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return models.Group{}, appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}
	if group.ID == "" {
		group.ID = tx.newID()
	}
	if _, exists := tx.st.groups[group.ID]; exists {
		return models.Group{}, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("group %s already exists", group.ID))
	}
	tx.st.groups[group.ID] = row[models.Group]{seq: tx.nextSeq(), value: group}
	return group, nil
}

// RemoveGroup deletes a group together with its students and sessions.
func (tx *Tx) RemoveGroup(id string) error {
	if _, ok := tx.st.groups[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	for sessionID, s := range tx.st.sessions {
		if s.value.GroupID == id {
			tx.deleteSession(sessionID)
		}
	}
	for studentID, st := range tx.st.students {
		if st.value.GroupID == id {
			tx.deleteStudent(studentID)
		}
	}
	delete(tx.st.groups, id)
	return nil
}

// CreateStudent inserts a student into an existing group.
func (tx *Tx) CreateStudent(student models.Student) (models.Student, error) {
	student.FullName = strings.TrimSpace(student.FullName)
	if student.FullName == "" {
		return models.Student{}, appErrors.Clone(appErrors.ErrValidation, "student full name is required")
	}
	if _, ok := tx.st.groups[student.GroupID]; !ok {
		return models.Student{}, appErrors.Clone(appErrors.ErrValidation, "unknown group")
	}
	if student.ID == "" {
		student.ID = tx.newID()
	}
	if _, exists := tx.st.students[student.ID]; exists {
		return models.Student{}, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s already exists", student.ID))
	}
	student = cloneStudent(student)
	tx.st.students[student.ID] = row[models.Student]{seq: tx.nextSeq(), value: student}
	return cloneStudent(student), nil
}

// RemoveStudent deletes a student and the student's attendance and reports.
func (tx *Tx) RemoveStudent(id string) error {
	if _, ok := tx.st.students[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	tx.deleteStudent(id)
	return nil
}

func (tx *Tx) deleteStudent(id string) {
	for key := range tx.st.attendance {
		if key.studentID == id {
			delete(tx.st.attendance, key)
		}
	}
	for key := range tx.st.reports {
		if key.studentID == id {
			delete(tx.st.reports, key)
		}
	}
	delete(tx.st.students, id)
}

// CreateSession schedules a session for an existing group.
func (tx *Tx) CreateSession(groupID string, dateTime time.Time, topic *string) (models.Session, error) {
	if _, ok := tx.st.groups[groupID]; !ok {
		return models.Session{}, appErrors.Clone(appErrors.ErrValidation, "unknown group")
	}
	if dateTime.IsZero() {
		return models.Session{}, appErrors.Clone(appErrors.ErrValidation, "session date and time is required")
	}
	session := models.Session{
		ID:        tx.newID(),
		GroupID:   groupID,
		DateTime:  dateTime,
		Topic:     normalizeTopic(topic),
		CreatedAt: tx.now,
		UpdatedAt: tx.now,
	}
	tx.st.sessions[session.ID] = row[models.Session]{seq: tx.nextSeq(), value: session}
	return cloneSession(session), nil
}

// UpdateSession edits a scheduled session. A session that already has attendance or
// reports cannot move to another group.
func (tx *Tx) UpdateSession(id, groupID string, dateTime time.Time, topic *string) (models.Session, error) {
	existing, ok := tx.st.sessions[id]
	if !ok {
		return models.Session{}, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if _, ok := tx.st.groups[groupID]; !ok {
		return models.Session{}, appErrors.Clone(appErrors.ErrValidation, "unknown group")
	}
	if dateTime.IsZero() {
		return models.Session{}, appErrors.Clone(appErrors.ErrValidation, "session date and time is required")
	}
	if groupID != existing.value.GroupID && tx.hasRecords(id) {
		return models.Session{}, appErrors.Clone(appErrors.ErrValidation, "cannot move a session with recorded attendance or reports to another group")
	}
	session := existing.value
	session.GroupID = groupID
	session.DateTime = dateTime
	session.Topic = normalizeTopic(topic)
	session.UpdatedAt = tx.now
	tx.st.sessions[id] = row[models.Session]{seq: existing.seq, value: session}
	return cloneSession(session), nil
}

// DeleteSession removes a session with its attendance records and reports.
func (tx *Tx) DeleteSession(id string) error {
	if _, ok := tx.st.sessions[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	tx.deleteSession(id)
	return nil
}

func (tx *Tx) deleteSession(id string) {
	for key := range tx.st.attendance {
		if key.sessionID == id {
			delete(tx.st.attendance, key)
		}
	}
	for key := range tx.st.reports {
		if key.sessionID == id {
			delete(tx.st.reports, key)
		}
	}
	delete(tx.st.sessions, id)
}

func (tx *Tx) hasRecords(sessionID string) bool {
	for key := range tx.st.attendance {
		if key.sessionID == sessionID {
			return true
		}
	}
	for key := range tx.st.reports {
		if key.sessionID == sessionID {
			return true
		}
	}
	return false
}

// UpsertAttendance records the status for a pair, replacing any previous record.
func (tx *Tx) UpsertAttendance(sessionID, studentID string, status models.AttendanceStatus) (models.AttendanceRecord, error) {
	if !status.Valid() {
		return models.AttendanceRecord{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid attendance status %q", status))
	}
	if err := tx.checkPair(sessionID, studentID); err != nil {
		return models.AttendanceRecord{}, err
	}
	key := pairKey{sessionID: sessionID, studentID: studentID}
	record := models.AttendanceRecord{SessionID: sessionID, StudentID: studentID, Status: status, UpdatedAt: tx.now}
	seq := tx.st.attendance[key].seq
	if seq == 0 {
		seq = tx.nextSeq()
	}
	tx.st.attendance[key] = row[models.AttendanceRecord]{seq: seq, value: record}
	return record, nil
}

// UpsertSessionReport updates the pair's report in place, keeping its id and creation
// time, or creates a new one.
func (tx *Tx) UpsertSessionReport(sessionID, studentID string, fields models.SessionReportFields) (models.SessionReport, error) {
	if !fields.Performance.Valid() {
		return models.SessionReport{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid performance level %q", fields.Performance))
	}
	if err := tx.checkPair(sessionID, studentID); err != nil {
		return models.SessionReport{}, err
	}
	key := pairKey{sessionID: sessionID, studentID: studentID}
	existing, found := tx.st.reports[key]
	report := existing.value
	seq := existing.seq
	if !found {
		report = models.SessionReport{
			ID:        tx.newID(),
			SessionID: sessionID,
			StudentID: studentID,
			CreatedAt: tx.now,
		}
		seq = tx.nextSeq()
	}
	report.Performance = fields.Performance
	report.Strengths = strings.TrimSpace(fields.Strengths)
	report.Improvements = strings.TrimSpace(fields.Improvements)
	report.Notes = strings.TrimSpace(fields.Notes)
	report.UpdatedAt = tx.now
	tx.st.reports[key] = row[models.SessionReport]{seq: seq, value: report}
	return report, nil
}

func (tx *Tx) checkPair(sessionID, studentID string) error {
	session, ok := tx.st.sessions[sessionID]
	if !ok {
		return appErrors.Clone(appErrors.ErrReference, "session not found")
	}
	student, ok := tx.st.students[studentID]
	if !ok {
		return appErrors.Clone(appErrors.ErrReference, "student not found")
	}
	if student.value.GroupID != session.value.GroupID {
		return appErrors.Clone(appErrors.ErrReference, "student is not in the session's group")
	}
	return nil
}

func normalizeTopic(topic *string) *string {
	if topic == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*topic)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
