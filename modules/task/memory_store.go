package task

import (
	"context"
	"sync"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// MemoryStore keeps tasks in an in-process map. It is the default backend
// for tests and demos; contents are lost on shutdown.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int64]*domain.Task
	nextID int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
	}
}

func (s *MemoryStore) Insert(_ context.Context, t *domain.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	stored := t.Clone()
	stored.ID = id
	s.tasks[id] = stored

	t.ID = id
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, orderBy, direction string) ([]*domain.Task, error) {
	s.mu.RLock()
	out := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	s.mu.RUnlock()

	column, ascending := normalizeListOrder(orderBy, direction)
	orderTasks(out, column, ascending)
	return out, nil
}

func (s *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Snapshot{
		Tasks:  cloneSnapshotTasks(s.tasks),
		NextID: s.nextID,
	}, nil
}

func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = cloneSnapshotTasks(snap.Tasks)
	s.nextID = snap.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }
