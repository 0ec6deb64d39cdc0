package models

import (
	"strings"
	"time"
)

// PerformanceLevel grades a student's work in one session.
type PerformanceLevel string

const (
	PerformanceExcellent        PerformanceLevel = "excellent"
	PerformanceGood             PerformanceLevel = "good"
	PerformanceAverage          PerformanceLevel = "average"
	PerformanceNeedsImprovement PerformanceLevel = "needs_improvement"
	PerformancePoor             PerformanceLevel = "poor"
)

// PerformanceLevels lists the levels from best to worst.
func PerformanceLevels() []PerformanceLevel {
	return []PerformanceLevel{
		PerformanceExcellent,
		PerformanceGood,
		PerformanceAverage,
		PerformanceNeedsImprovement,
		PerformancePoor,
	}
}

// Valid returns true when the level is supported.
func (p PerformanceLevel) Valid() bool {
	switch p {
	case PerformanceExcellent, PerformanceGood, PerformanceAverage, PerformanceNeedsImprovement, PerformancePoor:
		return true
	default:
		return false
	}
}

// Label returns the display text for the level.
func (p PerformanceLevel) Label() string {
	switch p {
	case PerformanceExcellent:
		return "Excellent"
	case PerformanceGood:
		return "Good"
	case PerformanceAverage:
		return "Average"
	case PerformanceNeedsImprovement:
		return "Needs Improvement"
	case PerformancePoor:
		return "Poor"
	default:
		return ""
	}
}

// ParsePerformanceLevel normalises raw input into a level.
func ParsePerformanceLevel(raw string) (PerformanceLevel, bool) {
	level := PerformanceLevel(strings.ToLower(strings.TrimSpace(raw)))
	return level, level.Valid()
}

// SessionReport is one student's qualitative write-up for one session.
type SessionReport struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"session_id"`
	StudentID    string           `json:"student_id"`
	Performance  PerformanceLevel `json:"performance"`
	Strengths    string           `json:"strengths"`
	Improvements string           `json:"improvements"`
	Notes        string           `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// SessionReportFields holds the editable part of a report.
type SessionReportFields struct {
	Performance  PerformanceLevel `json:"performance"`
	Strengths    string           `json:"strengths"`
	Improvements string           `json:"improvements"`
	Notes        string           `json:"notes"`
}
