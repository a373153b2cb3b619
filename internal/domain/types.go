package domain

import "strings"

type GoalID string

// ProgressType decides the unit of a goal's effort.
type ProgressType string

const (
	ProgressDuration ProgressType = "dur" // minutes
	ProgressCount    ProgressType = "cnt" // raw count
)

// ParseProgressType accepts the stored codes plus the "hr" code the
// first goal form offered, which always meant a duration goal.
func ParseProgressType(s string) (ProgressType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dur", "duration", "hr":
		return ProgressDuration, true
	case "cnt", "count":
		return ProgressCount, true
	default:
		return "", false
	}
}

type GoalStatus string

const (
	StatusNotStarted GoalStatus = "not_started"
	StatusActive     GoalStatus = "active"
	StatusPaused     GoalStatus = "paused"
	StatusCompleted  GoalStatus = "completed"
)

// Normalized maps the empty status of legacy device records to active:
// those goals predate status tracking and always accepted effort.
func (s GoalStatus) Normalized() GoalStatus {
	if s == "" {
		return StatusActive
	}
	return s
}

// AcceptsEffort reports whether effort may be logged in this status.
func (s GoalStatus) AcceptsEffort() bool {
	return s.Normalized() != StatusNotStarted
}

// CanTransition reports whether a goal may move from s to next.
func (s GoalStatus) CanTransition(next GoalStatus) bool {
	switch s.Normalized() {
	case StatusNotStarted:
		return next == StatusActive
	case StatusActive:
		return next == StatusPaused || next == StatusCompleted
	case StatusPaused:
		return next == StatusActive || next == StatusCompleted
	default:
		return false
	}
}
