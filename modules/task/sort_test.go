package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// TestNormalizeListOrder verifies the column allow-list and direction default
func TestNormalizeListOrder(t *testing.T) {
	cases := []struct {
		orderBy   string
		direction string
		column    string
		ascending bool
	}{
		{"", "", OrderByDueDate, true},
		{"title", "asc", OrderByTitle, true},
		{"TITLE", "DESC", OrderByTitle, false},
		{"priority", "desc", OrderByPriority, false},
		{"status", "backwards", OrderByStatus, true},
		{"created_at", "", OrderByDueDate, true},
		{"id; DROP TABLE tasks", "desc", OrderByDueDate, false},
	}

	for _, tc := range cases {
		column, ascending := normalizeListOrder(tc.orderBy, tc.direction)
		assert.Equal(t, tc.column, column, "orderBy=%q", tc.orderBy)
		assert.Equal(t, tc.ascending, ascending, "direction=%q", tc.direction)
	}
}

// TestCompareTasks verifies per-column comparison semantics
func TestCompareTasks(t *testing.T) {
	a := &domain.Task{
		Title:       "apple",
		Description: "Zebra",
		DueDate:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusCompleted,
	}
	b := &domain.Task{
		Title:       "Banana",
		Description: "ant",
		DueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Priority:    domain.PriorityLow,
		Status:      domain.StatusPending,
	}

	// Text columns ignore case.
	assert.Negative(t, compareTasks(a, b, OrderByTitle))
	assert.Positive(t, compareTasks(a, b, OrderByDescription))

	// Priority compares by rank, not alphabetically.
	assert.Positive(t, compareTasks(a, b, OrderByPriority))

	// COMPLETED sorts before PENDING lexically.
	assert.Negative(t, compareTasks(a, b, OrderByStatus))

	assert.Negative(t, compareTasks(a, b, OrderByDueDate))
	assert.Zero(t, compareTasks(a, a, OrderByDueDate))
}

// TestOrderTasksTieBreak verifies equal keys fall back to ascending id
func TestOrderTasksTieBreak(t *testing.T) {
	due := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	tasks := []*domain.Task{
		{ID: 3, DueDate: due},
		{ID: 1, DueDate: due},
		{ID: 2, DueDate: due.Add(time.Hour)},
	}

	orderTasks(tasks, OrderByDueDate, true)
	assert.Equal(t, []int64{1, 3, 2}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	// Descending flips the key order but keeps the id tiebreak ascending.
	orderTasks(tasks, OrderByDueDate, false)
	assert.Equal(t, []int64{2, 1, 3}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}
