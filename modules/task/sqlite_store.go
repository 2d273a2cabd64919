package task

import (
	"context"
	"errors"
	"fmt"
	"os"

	domain "github.com/example/task-tracker-demo/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRow is the GORM model for the tasks table. All columns except the id
// are text-typed; timestamps are stored as RFC 3339 UTC strings so ORDER BY
// on the raw text is chronological. AUTOINCREMENT keeps deleted ids from
// being reused.
type taskRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string `gorm:"column:title;not null"`
	Description string `gorm:"column:description;not null;default:''"`
	Due         string `gorm:"column:due_date;not null"`
	Priority    string `gorm:"column:priority;not null"`
	Status      string `gorm:"column:status;not null"`
	Created     string `gorm:"column:created_at;not null"`
}

func (taskRow) TableName() string { return "tasks" }

func toRow(t *domain.Task) taskRow {
	rec := t.ToRecord()
	return taskRow{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Due:         rec.DueDate,
		Priority:    rec.Priority,
		Status:      rec.Status,
		Created:     rec.CreatedAt,
	}
}

func (r taskRow) toTask() (*domain.Task, error) {
	rec := domain.Record{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.Due,
		Priority:    r.Priority,
		Status:      r.Status,
		CreatedAt:   r.Created,
	}
	return rec.ToTask()
}

// orderClause maps a normalized List column to its SQL ordering expression.
// The column is always allow-listed before it reaches this map.
func orderClause(column string, ascending bool) string {
	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}
	var expr string
	switch column {
	case OrderByTitle:
		expr = "title COLLATE NOCASE"
	case OrderByDescription:
		expr = "description COLLATE NOCASE"
	case OrderByPriority:
		expr = "CASE priority WHEN 'LOW' THEN 1 WHEN 'MEDIUM' THEN 2 WHEN 'HIGH' THEN 3 ELSE 0 END"
	case OrderByStatus:
		expr = "status"
	default:
		expr = "due_date"
	}
	return fmt.Sprintf("%s %s, id ASC", expr, dir)
}

// SQLiteStore persists tasks in a SQLite database via GORM.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and migrates the tasks table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, t *domain.Task) (int64, error) {
	row := toRow(t)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	t.ID = row.ID
	return row.ID, nil
}

func (s *SQLiteStore) Update(ctx context.Context, t *domain.Task) error {
	row := toRow(t)
	// Map form so empty strings (cleared description) still overwrite.
	result := s.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", t.ID).Updates(map[string]any{
		"title":       row.Title,
		"description": row.Description,
		"due_date":    row.Due,
		"priority":    row.Priority,
		"status":      row.Status,
		"created_at":  row.Created,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&taskRow{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var row taskRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return row.toTask()
}

func (s *SQLiteStore) List(ctx context.Context, orderBy, direction string) ([]*domain.Task, error) {
	column, ascending := normalizeListOrder(orderBy, direction)

	var rows []taskRow
	if err := s.db.WithContext(ctx).Order(orderClause(column, ascending)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	snap := &Snapshot{Tasks: make(map[int64]*domain.Task, len(rows)), NextID: 1}
	var maxID int64
	for _, row := range rows {
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		snap.Tasks[t.ID] = t
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	// AUTOINCREMENT tracks the last assigned id in sqlite_sequence; the row
	// only exists once an insert has happened.
	var seq struct{ Seq int64 }
	s.db.WithContext(ctx).Raw("SELECT seq FROM sqlite_sequence WHERE name = 'tasks'").Scan(&seq)
	snap.NextID = maxID + 1
	if seq.Seq >= maxID {
		snap.NextID = seq.Seq + 1
	}
	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	nextID := snap.NextID
	if nextID < 1 {
		nextID = 1
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tasks").Error; err != nil {
			return err
		}
		for _, t := range snap.Tasks {
			row := toRow(t)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Exec(
			"INSERT OR REPLACE INTO sqlite_sequence(name, seq) VALUES('tasks', ?)",
			nextID-1,
		).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
