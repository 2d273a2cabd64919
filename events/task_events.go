package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is accepted and persisted.
type TaskCreatedEvent struct {
	EventID  string    `json:"event_id"`
	TaskID   int64     `json:"task_id"`
	Title    string    `json:"title"`
	Priority string    `json:"priority"`
	DueDate  time.Time `json:"due_date"`
	At       time.Time `json:"at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted when task fields are changed.
type TaskUpdatedEvent struct {
	EventID string    `json:"event_id"`
	TaskID  int64     `json:"task_id"`
	Title   string    `json:"title"`
	At      time.Time `json:"at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskStatusToggledEvent is emitted when a task flips between PENDING and
// COMPLETED.
type TaskStatusToggledEvent struct {
	EventID   string    `json:"event_id"`
	TaskID    int64     `json:"task_id"`
	NewStatus string    `json:"new_status"`
	At        time.Time `json:"at"`
}

// TaskStatusToggledV1 is the typed event definition for status toggles.
// Subject: events.task.v1.task-status-toggled
var TaskStatusToggledV1 = helper.EventDefinition[TaskStatusToggledEvent](
	"task", "TaskStatusToggled", "v1",
)

// TaskDeletedEvent is emitted when a task is permanently removed.
type TaskDeletedEvent struct {
	EventID string    `json:"event_id"`
	TaskID  int64     `json:"task_id"`
	At      time.Time `json:"at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
