package task

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the date format accepted and produced at the
// application boundary (minute precision, local time).
const DateTimeLayout = "2006-01-02 15:04"

// DateLayout is the day-only format accepted for filter ranges.
const DateLayout = "2006-01-02"

// Priority is the ordinal importance of a task, ordered LOW < MEDIUM < HIGH.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority resolves a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PriorityLow):
		return PriorityLow, nil
	case string(PriorityMedium):
		return PriorityMedium, nil
	case string(PriorityHigh):
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%q is not one of LOW, MEDIUM, HIGH", s)
}

// Rank returns the numeric sort rank of the priority: LOW=1, MEDIUM=2,
// HIGH=3. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusCompleted):
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%q is not one of PENDING, COMPLETED", s)
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Task is the core domain entity: one unit of tracked work.
// Validation rules live in the manager, not here.
type Task struct {
	ID          int64
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
}

// Clone returns an independent copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// ParseDateTime parses a boundary date string in the local time zone.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), time.Local)
}

// FormatDateTime renders a timestamp in the boundary format.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLayout)
}

// ParseDate parses a day-only boundary string in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}
