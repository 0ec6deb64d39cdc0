package store

import "github.com/noah-isme/sma-classroom/internal/models"

// Reader is the query layer over one consistent state. Returned values are copies.
type Reader struct {
	st *state
}

// GroupByID returns the group with the given id.
func (r Reader) GroupByID(id string) (models.Group, bool) {
	g, ok := r.st.groups[id]
	return g.value, ok
}

// Groups returns all groups in insertion order.
func (r Reader) Groups() []models.Group {
	return sortedValues(r.st.groups, nil)
}

// StudentByID returns the student with the given id.
func (r Reader) StudentByID(id string) (models.Student, bool) {
	st, ok := r.st.students[id]
	if !ok {
		return models.Student{}, false
	}
	return cloneStudent(st.value), true
}

// StudentsInGroup returns the group's students in insertion order; empty when none.
func (r Reader) StudentsInGroup(groupID string) []models.Student {
	students := sortedValues(r.st.students, func(s models.Student) bool { return s.GroupID == groupID })
	for i := range students {
		students[i] = cloneStudent(students[i])
	}
	return students
}

// SessionByID returns the session with the given id.
func (r Reader) SessionByID(id string) (models.Session, bool) {
	s, ok := r.st.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return cloneSession(s.value), true
}

// Sessions returns every session in insertion order.
func (r Reader) Sessions() []models.Session {
	sessions := sortedValues(r.st.sessions, nil)
	for i := range sessions {
		sessions[i] = cloneSession(sessions[i])
	}
	return sessions
}

// AttendanceForSession returns the recorded attendance of a session.
func (r Reader) AttendanceForSession(sessionID string) []models.AttendanceRecord {
	return sortedValues(r.st.attendance, func(a models.AttendanceRecord) bool { return a.SessionID == sessionID })
}

// AttendanceFor returns the record for a (session, student) pair.
func (r Reader) AttendanceFor(sessionID, studentID string) (models.AttendanceRecord, bool) {
	a, ok := r.st.attendance[pairKey{sessionID: sessionID, studentID: studentID}]
	return a.value, ok
}

// SessionReportsForSession returns the reports written for a session.
func (r Reader) SessionReportsForSession(sessionID string) []models.SessionReport {
	return sortedValues(r.st.reports, func(rep models.SessionReport) bool { return rep.SessionID == sessionID })
}

// SessionReportFor returns the report for a (session, student) pair.
func (r Reader) SessionReportFor(sessionID, studentID string) (models.SessionReport, bool) {
	rep, ok := r.st.reports[pairKey{sessionID: sessionID, studentID: studentID}]
	return rep.value, ok
}

func cloneStudent(s models.Student) models.Student {
	s.ContactInfo = cloneString(s.ContactInfo)
	s.ParentPhone = cloneString(s.ParentPhone)
	return s
}

func cloneSession(s models.Session) models.Session {
	s.Topic = cloneString(s.Topic)
	return s
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
