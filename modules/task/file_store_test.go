package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// newTask builds a store fixture. UTC keeps the persisted RFC 3339 form
// byte-identical across a reload.
func newTask(title string, due time.Time, priority domain.Priority) *domain.Task {
	return &domain.Task{
		Title:       title,
		Description: "fixture",
		DueDate:     due,
		Priority:    priority,
		Status:      domain.StatusPending,
		CreatedAt:   time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

func newFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	store, err := NewFileStore(path, &mockLogger{})
	require.NoError(t, err)
	return store
}

// TestFileStoreRoundTrip verifies tasks and the id counter survive a reopen
func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	ctx := context.Background()

	store := newFileStore(t, path)
	first := newTask("Pay rent", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityHigh)
	id1, err := store.Insert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(1), first.ID)

	_, err = store.Insert(ctx, newTask("Water plants", time.Date(2026, 2, 3, 18, 0, 0, 0, time.UTC), domain.PriorityLow))
	require.NoError(t, err)

	reopened := newFileStore(t, path)
	got, err := reopened.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent", got.Title)
	assert.True(t, got.DueDate.Equal(first.DueDate))
	assert.Equal(t, domain.PriorityHigh, got.Priority)

	tasks, err := reopened.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// The counter continues where it left off.
	third, err := reopened.Insert(ctx, newTask("Dentist", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), domain.PriorityMedium))
	require.NoError(t, err)
	assert.Equal(t, int64(3), third)
}

// TestFileStoreMissingFileStartsFresh verifies a missing file is not an error
func TestFileStoreMissingFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	ctx := context.Background()

	store := newFileStore(t, path)
	tasks, err := store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// The first insert materializes the file, directories included.
	_, err = store.Insert(ctx, newTask("Pay rent", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityHigh))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestFileStoreQuarantinesCorruptFile verifies unreadable files are moved
// aside instead of being silently overwritten
func TestFileStoreQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	garbage := []byte("{not json at all")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	ctx := context.Background()
	store := newFileStore(t, path)

	tasks, err := store.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// The unreadable bytes survive under the .corrupt name.
	saved, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, garbage, saved)

	// The store works normally afterwards.
	id, err := store.Insert(ctx, newTask("Pay rent", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

// TestFileStoreQuarantinesMalformedRecord verifies schema-level corruption is
// treated the same as syntactic corruption
func TestFileStoreQuarantinesMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	doc := []byte(`{"tasks":{"1":{"id":1,"title":"x","description":"","due_date":"bogus","priority":"HIGH","status":"PENDING","created_at":"2026-01-10T08:00:00Z"}},"next_id":2}`)
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	store := newFileStore(t, path)
	tasks, err := store.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = os.Stat(path + ".corrupt")
	require.NoError(t, err)
}

// TestFileStoreUpdateDelete verifies mutations persist and misses error
func TestFileStoreUpdateDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	ctx := context.Background()

	store := newFileStore(t, path)
	task := newTask("Pay rent", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityHigh)
	_, err := store.Insert(ctx, task)
	require.NoError(t, err)

	task.Title = "Pay rent and utilities"
	task.Status = domain.StatusCompleted
	require.NoError(t, store.Update(ctx, task))

	reopened := newFileStore(t, path)
	got, err := reopened.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pay rent and utilities", got.Title)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	missing := newTask("Ghost", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityLow)
	missing.ID = 99
	require.ErrorIs(t, store.Update(ctx, missing), domain.ErrTaskNotFound)

	require.NoError(t, store.Delete(ctx, task.ID))
	_, err = store.Get(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	require.ErrorIs(t, store.Delete(ctx, task.ID), domain.ErrTaskNotFound)
}

// TestFileStoreSnapshotRoundTrip verifies Save and Load rebuild identical state
func TestFileStoreSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	ctx := context.Background()

	store := newFileStore(t, path)
	snap := &Snapshot{
		Tasks: map[int64]*domain.Task{
			3: func() *domain.Task {
				task := newTask("Pay rent", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityHigh)
				task.ID = 3
				return task
			}(),
			5: func() *domain.Task {
				task := newTask("Dentist", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), domain.PriorityMedium)
				task.ID = 5
				return task
			}(),
		},
		NextID: 9,
	}
	require.NoError(t, store.Save(ctx, snap))

	reopened := newFileStore(t, path)
	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), loaded.NextID)
	require.Len(t, loaded.Tasks, 2)
	assert.Equal(t, "Pay rent", loaded.Tasks[3].Title)
	assert.Equal(t, "Dentist", loaded.Tasks[5].Title)

	// The parked counter drives the next insert.
	id, err := reopened.Insert(ctx, newTask("New", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC), domain.PriorityLow))
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	// A snapshot with no counter still yields valid ids.
	require.NoError(t, store.Save(ctx, &Snapshot{Tasks: map[int64]*domain.Task{}}))
	fresh, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.NextID)
}

// TestFileStoreListDefaultOrder verifies due date ascending is the default
func TestFileStoreListDefaultOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	ctx := context.Background()

	store := newFileStore(t, path)
	_, err := store.Insert(ctx, newTask("Later", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), domain.PriorityLow))
	require.NoError(t, err)
	_, err = store.Insert(ctx, newTask("Sooner", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), domain.PriorityLow))
	require.NoError(t, err)

	tasks, err := store.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Sooner", tasks[0].Title)
	assert.Equal(t, "Later", tasks[1].Title)
}
