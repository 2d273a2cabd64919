package stats

import (
	"sync"
	"time"
)

// ActivityLog represents a single recorded task activity.
type ActivityLog struct {
	TaskID int64     `json:"task_id"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Activity kinds recorded by the store.
const (
	ActivityCreated   = "created"
	ActivityUpdated   = "updated"
	ActivityCompleted = "completed"
	ActivityReopened  = "reopened"
	ActivityDeleted   = "deleted"
)

// DefaultMaxActivityLogs is the default maximum number of activity logs to retain.
const DefaultMaxActivityLogs = 1000

// StatsStore provides thread-safe storage for task usage counters.
type StatsStore struct {
	mu                sync.RWMutex
	created           int64
	updated           int64
	deleted           int64
	completed         int64
	reopened          int64
	createdByPriority map[string]int64
	activity          []ActivityLog
	maxActivity       int
	lastActivity      time.Time
}

// NewStatsStore creates a new stats store with default limits.
func NewStatsStore() *StatsStore {
	return NewStatsStoreWithLimit(DefaultMaxActivityLogs)
}

// NewStatsStoreWithLimit creates a new stats store with a custom activity limit.
func NewStatsStoreWithLimit(maxLogs int) *StatsStore {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxActivityLogs
	}
	return &StatsStore{
		createdByPriority: make(map[string]int64),
		activity:          make([]ActivityLog, 0),
		maxActivity:       maxLogs,
	}
}

// RecordCreated records a task creation.
func (s *StatsStore) RecordCreated(taskID int64, title, priority string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created++
	s.createdByPriority[priority]++
	s.appendActivity(ActivityLog{TaskID: taskID, Kind: ActivityCreated, Detail: title, At: at})
}

// RecordUpdated records a task update.
func (s *StatsStore) RecordUpdated(taskID int64, title string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updated++
	s.appendActivity(ActivityLog{TaskID: taskID, Kind: ActivityUpdated, Detail: title, At: at})
}

// RecordToggled records a status flip. COMPLETED counts as a completion,
// anything else as a reopen.
func (s *StatsStore) RecordToggled(taskID int64, newStatus string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := ActivityReopened
	if newStatus == "COMPLETED" {
		kind = ActivityCompleted
		s.completed++
	} else {
		s.reopened++
	}
	s.appendActivity(ActivityLog{TaskID: taskID, Kind: kind, Detail: newStatus, At: at})
}

// RecordDeleted records a task deletion.
func (s *StatsStore) RecordDeleted(taskID int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted++
	s.appendActivity(ActivityLog{TaskID: taskID, Kind: ActivityDeleted, At: at})
}

// appendActivity must be called with the write lock held.
func (s *StatsStore) appendActivity(log ActivityLog) {
	s.activity = append(s.activity, log)
	if len(s.activity) > s.maxActivity {
		excess := len(s.activity) - s.maxActivity
		s.activity = s.activity[excess:]
	}
	if log.At.After(s.lastActivity) {
		s.lastActivity = log.At
	}
}

// RecentActivity returns the most recent activity logs, newest last.
func (s *StatsStore) RecentActivity(limit int) []ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.activity) == 0 {
		return nil
	}

	start := 0
	if limit > 0 && len(s.activity) > limit {
		start = len(s.activity) - limit
	}

	result := make([]ActivityLog, len(s.activity)-start)
	copy(result, s.activity[start:])
	return result
}

// Summary returns an overall usage summary.
func (s *StatsStore) Summary() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPriority := make(map[string]int64, len(s.createdByPriority))
	for k, v := range s.createdByPriority {
		byPriority[k] = v
	}

	summary := map[string]any{
		"tasks_created":       s.created,
		"tasks_updated":       s.updated,
		"tasks_deleted":       s.deleted,
		"tasks_completed":     s.completed,
		"tasks_reopened":      s.reopened,
		"created_by_priority": byPriority,
		"activity_logs":       len(s.activity),
	}
	if !s.lastActivity.IsZero() {
		summary["last_activity"] = s.lastActivity
	}
	return summary
}
