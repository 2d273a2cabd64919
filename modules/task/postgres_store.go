package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgCreateTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    due_date TEXT NOT NULL,
    priority TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

// pgOrderClause maps a normalized List column to its ORDER BY expression.
func pgOrderClause(column string, ascending bool) string {
	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}
	var expr string
	switch column {
	case OrderByTitle:
		expr = "LOWER(title)"
	case OrderByDescription:
		expr = "LOWER(description)"
	case OrderByPriority:
		expr = "CASE priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 ELSE 0 END"
	case OrderByStatus:
		expr = "status"
	default:
		expr = "due_date"
	}
	return fmt.Sprintf("%s %s, id ASC", expr, dir)
}

// PostgresStore persists tasks in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL and creates the tasks table if it
// does not exist.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, pgCreateTasksTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tasks table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, t *domain.Task) (int64, error) {
	rec := t.ToRecord()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, due_date, priority, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rec.Title, rec.Description, rec.DueDate, rec.Priority, rec.Status, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	t.ID = id
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, t *domain.Task) error {
	rec := t.ToRecord()
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, due_date = $4, priority = $5, status = $6, created_at = $7
		 WHERE id = $1`,
		rec.ID, rec.Title, rec.Description, rec.DueDate, rec.Priority, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var rec domain.Record
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, due_date, priority, status, created_at
		 FROM tasks WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Title, &rec.Description, &rec.DueDate, &rec.Priority, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return rec.ToTask()
}

func (s *PostgresStore) List(ctx context.Context, orderBy, direction string) ([]*domain.Task, error) {
	column, ascending := normalizeListOrder(orderBy, direction)

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, due_date, priority, status, created_at
		 FROM tasks ORDER BY `+pgOrderClause(column, ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.DueDate, &rec.Priority, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t, err := rec.ToTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if out == nil {
		out = []*domain.Task{}
	}
	return out, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	tasks, err := s.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tasks: make(map[int64]*domain.Task, len(tasks)), NextID: 1}
	for _, t := range tasks {
		snap.Tasks[t.ID] = t
	}

	var lastValue int64
	var isCalled bool
	err = s.pool.QueryRow(ctx, "SELECT last_value, is_called FROM tasks_id_seq").Scan(&lastValue, &isCalled)
	if err != nil {
		return nil, fmt.Errorf("failed to read id sequence: %w", err)
	}
	if isCalled {
		snap.NextID = lastValue + 1
	} else {
		snap.NextID = lastValue
	}
	return snap, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	for _, t := range snap.Tasks {
		rec := t.ToRecord()
		if _, err := tx.Exec(ctx,
			`INSERT INTO tasks (id, title, description, due_date, priority, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.ID, rec.Title, rec.Description, rec.DueDate, rec.Priority, rec.Status, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert task %d: %w", rec.ID, err)
		}
	}

	// Park the sequence so the next insert continues from the snapshot.
	if snap.NextID > 1 {
		if _, err := tx.Exec(ctx, "SELECT setval('tasks_id_seq', $1, true)", snap.NextID-1); err != nil {
			return fmt.Errorf("failed to set id sequence: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx, "SELECT setval('tasks_id_seq', 1, false)"); err != nil {
			return fmt.Errorf("failed to reset id sequence: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
