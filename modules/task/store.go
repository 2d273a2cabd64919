package task

import (
	"context"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// Snapshot is a full copy of the persisted state: the live tasks keyed by id
// plus the next id the store would assign.
type Snapshot struct {
	Tasks  map[int64]*domain.Task
	NextID int64
}

// Store is the persistence port for tasks. All adapters are safe for
// concurrent use and produce identical externally observable semantics:
// ids are assigned in increasing order and never reused, Get/Update/Delete
// on an unknown id return domain.ErrTaskNotFound, and List applies the same
// ordering rules regardless of backend.
type Store interface {
	// Insert assigns the next id, sets it on the task, and persists it.
	Insert(ctx context.Context, t *domain.Task) (int64, error)

	// Update replaces the stored task with the same id.
	Update(ctx context.Context, t *domain.Task) error

	// Delete removes the task permanently.
	Delete(ctx context.Context, id int64) error

	// Get returns a copy of the task with the given id.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// List returns all tasks ordered by the given column. Columns outside
	// the allow-list (title, description, due_date, priority, status) fall
	// back to due_date; any direction other than "desc" sorts ascending.
	List(ctx context.Context, orderBy, direction string) ([]*domain.Task, error)

	// Load reads the full persisted state.
	Load(ctx context.Context) (*Snapshot, error)

	// Save atomically replaces the full persisted state. The backing
	// storage is never left partially written.
	Save(ctx context.Context, snap *Snapshot) error

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend ("memory", "file", "sqlite", ...).
	Name() string

	Close() error
}

// cloneSnapshotTasks deep-copies a snapshot task map.
func cloneSnapshotTasks(tasks map[int64]*domain.Task) map[int64]*domain.Task {
	out := make(map[int64]*domain.Task, len(tasks))
	for id, t := range tasks {
		out[id] = t.Clone()
	}
	return out
}
