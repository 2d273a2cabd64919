package task

import (
	"fmt"
	"time"
)

// Record is the flat persisted representation of a Task: scalar fields only,
// enums as their symbolic names, timestamps as RFC 3339 UTC strings so that
// lexical ordering of the stored text matches chronological ordering.
type Record struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// ToRecord flattens the task into its persisted form.
func (t *Task) ToRecord() Record {
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.UTC().Format(time.RFC3339),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToTask reconstructs the domain entity from its persisted form. It fails
// with ErrMalformedRecord when a required field is missing or unreadable.
func (r Record) ToTask() (*Task, error) {
	if r.ID <= 0 {
		return nil, fmt.Errorf("%w: missing or non-positive id", ErrMalformedRecord)
	}
	if r.Title == "" {
		return nil, fmt.Errorf("%w: missing title (id %d)", ErrMalformedRecord, r.ID)
	}
	due, err := time.Parse(time.RFC3339, r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad due_date %q (id %d)", ErrMalformedRecord, r.DueDate, r.ID)
	}
	created, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_at %q (id %d)", ErrMalformedRecord, r.CreatedAt, r.ID)
	}
	priority, err := ParsePriority(r.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: bad priority (id %d): %v", ErrMalformedRecord, r.ID, err)
	}
	status, err := ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: bad status (id %d): %v", ErrMalformedRecord, r.ID, err)
	}
	return &Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     due,
		Priority:    priority,
		Status:      status,
		CreatedAt:   created,
	}, nil
}
