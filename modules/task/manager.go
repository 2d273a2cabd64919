package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/example/task-tracker-demo/domain/task"
)

const (
	// maxTitleLength is the rune limit for a trimmed title.
	maxTitleLength = 50
	// dueDateWindowYears bounds how far out a due date may lie.
	dueDateWindowYears = 2
)

// Manager applies the task business rules and orchestrates the store. Every
// mutating operation validates first and persists synchronously before
// returning, so a caller observing success knows the change is durable.
type Manager struct {
	store          Store
	now            func() time.Time
	duplicateCheck bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source (used by tests to pin "now").
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDuplicateCheck toggles rejection of tasks whose title and description
// case-insensitively match an existing task.
func WithDuplicateCheck(enabled bool) Option {
	return func(m *Manager) { m.duplicateCheck = enabled }
}

// NewManager creates a manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// validateTitle trims the title and enforces the length rules.
func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return "", &domain.ValidationError{Field: "title", Err: errors.New("must not be empty")}
	}
	if n > maxTitleLength {
		return "", &domain.ValidationError{
			Field: "title",
			Err:   fmt.Errorf("must be at most %d characters", maxTitleLength),
		}
	}
	return title, nil
}

// parseDueDate parses the boundary string and enforces the validity window:
// not before the current minute, not more than two years out. Both bounds
// are inclusive.
func (m *Manager) parseDueDate(s string) (time.Time, error) {
	due, err := domain.ParseDateTime(s)
	if err != nil {
		return time.Time{}, &domain.ValidationError{
			Field: "due_date",
			Err:   fmt.Errorf("must match format %s", domain.DateTimeLayout),
		}
	}

	floor := m.now().Truncate(time.Minute)
	if due.Before(floor) {
		return time.Time{}, &domain.ValidationError{Field: "due_date", Err: errors.New("must not be in the past")}
	}
	if due.After(floor.AddDate(dueDateWindowYears, 0, 0)) {
		return time.Time{}, &domain.ValidationError{
			Field: "due_date",
			Err:   fmt.Errorf("must be within %d years", dueDateWindowYears),
		}
	}
	return due, nil
}

func parsePriority(s string) (domain.Priority, error) {
	p, err := domain.ParsePriority(s)
	if err != nil {
		return "", &domain.ValidationError{Field: "priority", Err: err}
	}
	return p, nil
}

// isDuplicate reports whether a task already carries the same title and
// description, compared case-insensitively.
func (m *Manager) isDuplicate(ctx context.Context, title, description string) (bool, error) {
	tasks, err := m.store.List(ctx, "", "")
	if err != nil {
		return false, fmt.Errorf("failed to list tasks: %w", err)
	}
	for _, t := range tasks {
		if strings.EqualFold(t.Title, title) && strings.EqualFold(t.Description, description) {
			return true, nil
		}
	}
	return false, nil
}

// Add validates the inputs and persists a new task. The task starts PENDING
// with its creation time set to now.
func (m *Manager) Add(ctx context.Context, title, description, dueDate, priority string) (*domain.Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	due, err := m.parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}
	prio, err := parsePriority(priority)
	if err != nil {
		return nil, err
	}

	if m.duplicateCheck {
		dup, err := m.isDuplicate(ctx, title, description)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, domain.ErrDuplicateTask
		}
	}

	t := &domain.Task{
		Title:       title,
		Description: description,
		DueDate:     due,
		Priority:    prio,
		Status:      domain.StatusPending,
		CreatedAt:   m.now(),
	}
	if _, err := m.store.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}
	return t, nil
}

// Get returns the task with the given id.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return m.store.Get(ctx, id)
}

// UpdateInput carries the optional field changes for Update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *string
}

// Update applies the supplied field changes after validating each one with
// the same rules as Add. The due date window is re-checked whenever a new
// due date is supplied.
func (m *Manager) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Task, error) {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.DueDate != nil {
		due, err := m.parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = due
	}
	if in.Priority != nil {
		prio, err := parsePriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		t.Priority = prio
	}

	if err := m.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}
	return t, nil
}

// ToggleStatus flips the task between PENDING and COMPLETED.
func (m *Manager) ToggleStatus(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = t.Status.Toggle()
	if err := m.store.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}
	return t, nil
}

// Delete removes the task permanently.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	return m.store.Delete(ctx, id)
}

// ListAll returns every task in the store ordering described by Store.List.
func (m *Manager) ListAll(ctx context.Context, orderBy, direction string) ([]*domain.Task, error) {
	return m.store.List(ctx, orderBy, direction)
}

// FilterOptions narrows the task listing. Zero-valued fields are skipped;
// informed criteria combine with AND.
type FilterOptions struct {
	Status     string
	SearchTerm string
	Priority   string
	DateFrom   string
	DateTo     string
}

// Filter returns the tasks matching every informed criterion. The search
// term matches case-insensitively against title or description substrings;
// date bounds are inclusive and cover the whole named day.
func (m *Manager) Filter(ctx context.Context, opts FilterOptions) ([]*domain.Task, error) {
	var (
		status   domain.Status
		priority domain.Priority
		from, to time.Time
		err      error
	)

	if opts.Status != "" {
		if status, err = domain.ParseStatus(opts.Status); err != nil {
			return nil, &domain.ValidationError{Field: "status", Err: err}
		}
	}
	if opts.Priority != "" {
		if priority, err = parsePriority(opts.Priority); err != nil {
			return nil, err
		}
	}
	if opts.DateFrom != "" {
		if from, err = domain.ParseDate(opts.DateFrom); err != nil {
			return nil, &domain.ValidationError{
				Field: "date_from",
				Err:   fmt.Errorf("must match format %s", domain.DateLayout),
			}
		}
	}
	if opts.DateTo != "" {
		if to, err = domain.ParseDate(opts.DateTo); err != nil {
			return nil, &domain.ValidationError{
				Field: "date_to",
				Err:   fmt.Errorf("must match format %s", domain.DateLayout),
			}
		}
		// Inclusive upper bound: anything due on the named day matches.
		to = to.AddDate(0, 0, 1)
	}

	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))

	tasks, err := m.store.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if opts.Status != "" && t.Status != status {
			continue
		}
		if opts.Priority != "" && t.Priority != priority {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		if opts.DateFrom != "" && t.DueDate.Before(from) {
			continue
		}
		if opts.DateTo != "" && !t.DueDate.Before(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Sortable keys accepted by SortTasks.
const (
	SortByDueDate  = "due_date"
	SortByPriority = "priority"
	SortByTitle    = "title"
)

// SortTasks returns a sorted copy of tasks. Equal keys keep their original
// relative order. An unrecognized key returns the input unchanged.
func (m *Manager) SortTasks(tasks []*domain.Task, sortBy string, ascending bool) []*domain.Task {
	switch sortBy {
	case SortByDueDate, SortByPriority, SortByTitle:
	default:
		return tasks
	}

	out := make([]*domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		c := compareTasks(out[i], out[j], sortBy)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}
