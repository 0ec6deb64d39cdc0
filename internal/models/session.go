package models

import "time"

// Session is a scheduled class meeting for a group.
type Session struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	DateTime  time.Time `json:"date_time"`
	Topic     *string   `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsUpcoming reports whether the session starts after now.
func (s Session) IsUpcoming(now time.Time) bool {
	return s.DateTime.After(now)
}

// IsCompleted reports whether the session start is not after now.
func (s Session) IsCompleted(now time.Time) bool {
	return !s.IsUpcoming(now)
}

// IsToday reports whether the session falls on now's calendar date, in now's location.
func (s Session) IsToday(now time.Time) bool {
	y1, m1, d1 := s.DateTime.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TopicText returns the topic or an empty string.
func (s Session) TopicText() string {
	if s.Topic == nil {
		return ""
	}
	return *s.Topic
}

// SessionFilter scopes session listings.
type SessionFilter struct {
	GroupID string
	Search  string
}
