package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// testNow pins the manager clock. Local time matters: due dates parse in
// the local zone and validate against this instant.
var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewManager(NewMemoryStore(), opts...)
}

func mustAdd(t *testing.T, m *Manager, title, description, dueDate, priority string) *domain.Task {
	t.Helper()
	task, err := m.Add(context.Background(), title, description, dueDate, priority)
	require.NoError(t, err)
	return task
}

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, field, ve.Field)
}

// TestAddDefaults verifies a new task starts pending with an assigned id
func TestAddDefaults(t *testing.T) {
	m := newTestManager(t)

	task := mustAdd(t, m, "Pay rent", "Transfer before the 5th", "2026-02-01 09:00", "high")

	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "Pay rent", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, testNow, task.CreatedAt)

	stored, err := m.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)
}

// TestAddTitleBoundaries verifies the trimmed 1..50 rune window
func TestAddTitleBoundaries(t *testing.T) {
	m := newTestManager(t)

	// Exactly 50 runes passes, surrounding whitespace does not count.
	long := strings.Repeat("x", 50)
	task := mustAdd(t, m, "  "+long+"  ", "", "2026-02-01 09:00", "low")
	assert.Equal(t, long, task.Title)

	// Rune count, not byte count: 50 two-byte runes still pass.
	accented := strings.Repeat("ñ", 50)
	task = mustAdd(t, m, accented, "", "2026-02-01 09:00", "low")
	assert.Equal(t, accented, task.Title)

	_, err := m.Add(context.Background(), strings.Repeat("x", 51), "", "2026-02-01 09:00", "low")
	requireValidationError(t, err, "title")
	assert.Contains(t, err.Error(), "at most 50")

	_, err = m.Add(context.Background(), "   ", "", "2026-02-01 09:00", "low")
	requireValidationError(t, err, "title")
	assert.Contains(t, err.Error(), "must not be empty")
}

// TestAddDueDateBoundaries verifies the inclusive now..now+2y window
func TestAddDueDateBoundaries(t *testing.T) {
	m := newTestManager(t)

	// The current minute is the inclusive lower bound.
	mustAdd(t, m, "Right now", "", "2026-01-15 12:00", "low")

	// Exactly two years out is the inclusive upper bound.
	mustAdd(t, m, "Far out", "", "2028-01-15 12:00", "low")

	_, err := m.Add(context.Background(), "Too late", "", "2026-01-15 11:59", "low")
	requireValidationError(t, err, "due_date")
	assert.Contains(t, err.Error(), "must not be in the past")

	_, err = m.Add(context.Background(), "Too far", "", "2028-01-15 12:01", "low")
	requireValidationError(t, err, "due_date")
	assert.Contains(t, err.Error(), "within 2 years")

	_, err = m.Add(context.Background(), "Bad format", "", "15/01/2026", "low")
	requireValidationError(t, err, "due_date")
}

// TestAddInvalidPriority verifies unknown priorities are rejected
func TestAddInvalidPriority(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Add(context.Background(), "Task", "", "2026-02-01 09:00", "URGENT")
	requireValidationError(t, err, "priority")
	assert.Contains(t, err.Error(), "LOW, MEDIUM, HIGH")
}

// TestAddDuplicatePolicy verifies the title+description duplicate check
func TestAddDuplicatePolicy(t *testing.T) {
	m := newTestManager(t, WithDuplicateCheck(true))

	mustAdd(t, m, "Pay rent", "Transfer", "2026-02-01 09:00", "high")

	// Case-insensitive match on both fields.
	_, err := m.Add(context.Background(), "PAY RENT", "TRANSFER", "2026-03-01 09:00", "low")
	require.ErrorIs(t, err, domain.ErrDuplicateTask)

	// Same title with a different description is allowed.
	mustAdd(t, m, "Pay rent", "For February", "2026-03-01 09:00", "low")

	// With the check disabled exact duplicates go through.
	relaxed := newTestManager(t)
	mustAdd(t, relaxed, "Pay rent", "Transfer", "2026-02-01 09:00", "high")
	mustAdd(t, relaxed, "Pay rent", "Transfer", "2026-02-01 09:00", "high")
}

// TestGetMissing verifies lookups of absent ids fail with not found
func TestGetMissing(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

// TestUpdatePartial verifies nil fields keep their current value
func TestUpdatePartial(t *testing.T) {
	m := newTestManager(t)
	created := mustAdd(t, m, "Pay rent", "Transfer", "2026-02-01 09:00", "high")

	newTitle := "Pay rent and utilities"
	updated, err := m.Update(context.Background(), created.ID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.DueDate, updated.DueDate)
	assert.Equal(t, created.Priority, updated.Priority)

	// An empty description pointer clears the field.
	empty := ""
	updated, err = m.Update(context.Background(), created.ID, UpdateInput{Description: &empty})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
}

// TestUpdateValidation verifies failed updates leave the stored task intact
func TestUpdateValidation(t *testing.T) {
	m := newTestManager(t)
	created := mustAdd(t, m, "Pay rent", "Transfer", "2026-02-01 09:00", "high")

	bad := "not-a-date"
	_, err := m.Update(context.Background(), created.ID, UpdateInput{DueDate: &bad})
	requireValidationError(t, err, "due_date")

	stored, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.DueDate, stored.DueDate)

	_, err = m.Update(context.Background(), 42, UpdateInput{Title: &created.Title})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

// TestToggleStatusRoundTrip verifies two toggles return to the start state
func TestToggleStatusRoundTrip(t *testing.T) {
	m := newTestManager(t)
	created := mustAdd(t, m, "Pay rent", "", "2026-02-01 09:00", "high")

	toggled, err := m.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, toggled.Status)

	stored, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	toggled, err = m.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, toggled.Status)

	_, err = m.ToggleStatus(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

// TestDeleteRemoves verifies deletion is permanent and not repeatable
func TestDeleteRemoves(t *testing.T) {
	m := newTestManager(t)
	created := mustAdd(t, m, "Pay rent", "", "2026-02-01 09:00", "high")

	require.NoError(t, m.Delete(context.Background(), created.ID))

	_, err := m.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = m.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func seedFilterFixture(t *testing.T, m *Manager) {
	t.Helper()
	mustAdd(t, m, "Pay rent", "Transfer before the 5th", "2026-02-01 09:00", "high")
	mustAdd(t, m, "Water plants", "Balcony and kitchen", "2026-02-03 18:00", "low")
	mustAdd(t, m, "Renew passport", "Book appointment", "2026-02-10 10:00", "medium")
	mustAdd(t, m, "Team retro", "Prepare notes", "2026-02-10 15:00", "medium")
	mustAdd(t, m, "Dentist", "Cleaning", "2026-03-01 11:00", "high")

	// Complete tasks 2 and 4.
	_, err := m.ToggleStatus(context.Background(), 2)
	require.NoError(t, err)
	_, err = m.ToggleStatus(context.Background(), 4)
	require.NoError(t, err)
}

// TestFilterByStatus verifies only matching-status tasks come back
func TestFilterByStatus(t *testing.T) {
	m := newTestManager(t)
	seedFilterFixture(t, m)

	completed, err := m.Filter(context.Background(), FilterOptions{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 2)
	for _, task := range completed {
		assert.Equal(t, domain.StatusCompleted, task.Status)
	}

	pending, err := m.Filter(context.Background(), FilterOptions{Status: "PENDING"})
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	_, err = m.Filter(context.Background(), FilterOptions{Status: "DONE"})
	requireValidationError(t, err, "status")
}

// TestFilterBySearchTerm verifies substring match on title or description
func TestFilterBySearchTerm(t *testing.T) {
	m := newTestManager(t)
	seedFilterFixture(t, m)

	// "ren" hits "Pay rent" and "Renew passport".
	matches, err := m.Filter(context.Background(), FilterOptions{SearchTerm: "REN"})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	matches, err = m.Filter(context.Background(), FilterOptions{SearchTerm: "balcony"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Water plants", matches[0].Title)

	matches, err = m.Filter(context.Background(), FilterOptions{SearchTerm: "zebra"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// TestFilterByDateRange verifies from/to bounds cover their whole days
func TestFilterByDateRange(t *testing.T) {
	m := newTestManager(t)
	seedFilterFixture(t, m)

	// Both bounds on the same day keep everything due that day.
	matches, err := m.Filter(context.Background(), FilterOptions{
		DateFrom: "2026-02-10",
		DateTo:   "2026-02-10",
	})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = m.Filter(context.Background(), FilterOptions{DateFrom: "2026-02-04"})
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	matches, err = m.Filter(context.Background(), FilterOptions{DateTo: "2026-02-03"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = m.Filter(context.Background(), FilterOptions{DateFrom: "04-02-2026"})
	requireValidationError(t, err, "date_from")
}

// TestFilterCombined verifies criteria combine with AND
func TestFilterCombined(t *testing.T) {
	m := newTestManager(t)
	seedFilterFixture(t, m)

	matches, err := m.Filter(context.Background(), FilterOptions{
		Status:   "pending",
		Priority: "medium",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Renew passport", matches[0].Title)

	matches, err = m.Filter(context.Background(), FilterOptions{
		Priority: "high",
		DateTo:   "2026-02-28",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Pay rent", matches[0].Title)
}

// TestSortTasksByPriority verifies descending rank order with stable ties
func TestSortTasksByPriority(t *testing.T) {
	m := newTestManager(t)
	tasks := []*domain.Task{
		{ID: 1, Title: "a", Priority: domain.PriorityLow},
		{ID: 2, Title: "b", Priority: domain.PriorityMedium},
		{ID: 3, Title: "c", Priority: domain.PriorityHigh},
		{ID: 4, Title: "d", Priority: domain.PriorityMedium},
	}

	sorted := m.SortTasks(tasks, SortByPriority, false)
	require.Len(t, sorted, 4)
	assert.Equal(t, domain.PriorityHigh, sorted[0].Priority)
	// The two MEDIUM tasks keep their original relative order.
	assert.Equal(t, int64(2), sorted[1].ID)
	assert.Equal(t, int64(4), sorted[2].ID)
	assert.Equal(t, domain.PriorityLow, sorted[3].Priority)

	// The input slice is left untouched.
	assert.Equal(t, int64(1), tasks[0].ID)
}

// TestSortTasksByTitle verifies case-insensitive title ordering
func TestSortTasksByTitle(t *testing.T) {
	m := newTestManager(t)
	tasks := []*domain.Task{
		{ID: 1, Title: "cherry"},
		{ID: 2, Title: "Apple"},
		{ID: 3, Title: "banana"},
	}

	sorted := m.SortTasks(tasks, SortByTitle, true)
	assert.Equal(t, []string{"Apple", "banana", "cherry"},
		[]string{sorted[0].Title, sorted[1].Title, sorted[2].Title})
}

// TestSortTasksByDueDate verifies chronological ordering both ways
func TestSortTasksByDueDate(t *testing.T) {
	m := newTestManager(t)
	tasks := []*domain.Task{
		{ID: 1, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, DueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	asc := m.SortTasks(tasks, SortByDueDate, true)
	assert.Equal(t, []int64{2, 1, 3}, []int64{asc[0].ID, asc[1].ID, asc[2].ID})

	desc := m.SortTasks(tasks, SortByDueDate, false)
	assert.Equal(t, []int64{3, 1, 2}, []int64{desc[0].ID, desc[1].ID, desc[2].ID})
}

// TestSortTasksUnknownKey verifies unrecognized keys return the input as-is
func TestSortTasksUnknownKey(t *testing.T) {
	m := newTestManager(t)
	tasks := []*domain.Task{
		{ID: 2, Title: "b"},
		{ID: 1, Title: "a"},
	}

	sorted := m.SortTasks(tasks, "created_at", true)
	assert.Equal(t, []int64{2, 1}, []int64{sorted[0].ID, sorted[1].ID})
}
