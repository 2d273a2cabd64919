package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/go-monolith/mono/pkg/types"
)

// fileDocument is the on-disk layout: tasks keyed by stringified id plus the
// next id to assign.
type fileDocument struct {
	Tasks  map[string]domain.Record `json:"tasks"`
	NextID int64                    `json:"next_id"`
}

// FileStore persists tasks in a single JSON document. Every mutation is
// written synchronously with write-temp-then-rename, so the file is never
// left partially written. An unreadable file is quarantined to
// "<path>.corrupt" and the store starts fresh; the loss is logged, never
// silent.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	logger types.Logger
	tasks  map[int64]*domain.Task
	nextID int64
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or creates) the store backed by the JSON file at path.
func NewFileStore(path string, logger types.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
	}
	s.load()
	return s, nil
}

// load reads the backing file into memory. Missing file means a fresh store;
// anything unreadable is quarantined and the store also starts fresh.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.quarantine(err)
		return
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.quarantine(err)
		return
	}

	tasks := make(map[int64]*domain.Task, len(doc.Tasks))
	for key, rec := range doc.Tasks {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.quarantine(fmt.Errorf("bad task key %q: %w", key, err))
			return
		}
		t, err := rec.ToTask()
		if err != nil {
			s.quarantine(err)
			return
		}
		tasks[id] = t
	}

	s.tasks = tasks
	s.nextID = doc.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}
}

// quarantine moves the unreadable file aside and logs the reset. Renaming is
// best effort; the diagnostic is the contract.
func (s *FileStore) quarantine(cause error) {
	corruptPath := s.path + ".corrupt"
	renameErr := os.Rename(s.path, corruptPath)

	log := s.logger.With("path", s.path, "error", cause)
	if renameErr != nil {
		log.Warn("Task file unreadable, starting with an empty store")
	} else {
		log.Warn("Task file unreadable, starting with an empty store", "saved_as", corruptPath)
	}

	s.tasks = make(map[int64]*domain.Task)
	s.nextID = 1
}

// persist writes the current state to disk. Callers hold the write lock.
func (s *FileStore) persist() error {
	doc := fileDocument{
		Tasks:  make(map[string]domain.Record, len(s.tasks)),
		NextID: s.nextID,
	}
	for id, t := range s.tasks {
		doc.Tasks[strconv.FormatInt(id, 10)] = t.ToRecord()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode task file: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	return nil
}

func (s *FileStore) Insert(_ context.Context, t *domain.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	stored := t.Clone()
	stored.ID = id
	s.tasks[id] = stored
	s.nextID++

	if err := s.persist(); err != nil {
		delete(s.tasks, id)
		s.nextID--
		return 0, err
	}

	t.ID = id
	return id, nil
}

func (s *FileStore) Update(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tasks[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	s.tasks[t.ID] = t.Clone()

	if err := s.persist(); err != nil {
		s.tasks[t.ID] = prev
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)

	if err := s.persist(); err != nil {
		s.tasks[id] = prev
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *FileStore) List(_ context.Context, orderBy, direction string) ([]*domain.Task, error) {
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

func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Snapshot{
		Tasks:  cloneSnapshotTasks(s.tasks),
		NextID: s.nextID,
	}, nil
}

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTasks, prevNextID := s.tasks, s.nextID
	s.tasks = cloneSnapshotTasks(snap.Tasks)
	s.nextID = snap.NextID
	if s.nextID < 1 {
		s.nextID = 1
	}

	if err := s.persist(); err != nil {
		s.tasks, s.nextID = prevTasks, prevNextID
		return err
	}
	return nil
}

func (s *FileStore) Ping(_ context.Context) error {
	// The directory must stay writable for mutations to persist.
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("task file directory unavailable: %w", err)
	}
	return nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Close() error { return nil }

// writeFileAtomic writes data to a temp file in the destination directory,
// fsyncs it, then renames it over path and fsyncs the directory so the
// entry survives a crash.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true

	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
