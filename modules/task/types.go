package task

import (
	"errors"

	domain "github.com/example/task-tracker-demo/domain/task"
)

// Error codes carried across the service boundary.
const (
	ErrCodeValidation = "validation_error"
	ErrCodeNotFound   = "not_found"
	ErrCodeDuplicate  = "duplicate_task"
	ErrCodeInternal   = "internal_error"
)

// ServiceError reports a failed operation as data, so validation messages
// and failure kinds survive the trip through the service bus.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// serviceError classifies an error into its boundary representation.
func serviceError(err error) *ServiceError {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return &ServiceError{Code: ErrCodeValidation, Message: ve.Error()}
	case errors.Is(err, domain.ErrTaskNotFound):
		return &ServiceError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicateTask):
		return &ServiceError{Code: ErrCodeDuplicate, Message: err.Error()}
	default:
		return &ServiceError{Code: ErrCodeInternal, Message: err.Error()}
	}
}

// TaskDTO is the boundary representation of a task: dates in the
// minute-precision input format, enums as their names.
type TaskDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     domain.FormatDateTime(t.DueDate),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   domain.FormatDateTime(t.CreatedAt),
	}
}

func toTaskDTOs(tasks []*domain.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskDTO(t))
	}
	return out
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

// TaskResponse is the reply for operations returning a single task.
type TaskResponse struct {
	Task  *TaskDTO      `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// GetTaskRequest is the request for fetching a task.
type GetTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// UpdateTaskRequest is the request for updating a task. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	TaskID      int64   `json:"task_id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// ToggleTaskRequest is the request for flipping a task's status.
type ToggleTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// DeleteTaskResponse is the reply for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// ListTasksRequest is the request for the ordered task listing.
type ListTasksRequest struct {
	OrderBy   string `json:"order_by,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// FilterTasksRequest narrows the listing; empty criteria are skipped. When
// OrderBy names a sortable key (due_date, priority, title) the filtered
// result is sorted as well.
type FilterTasksRequest struct {
	Status     string `json:"status,omitempty"`
	SearchTerm string `json:"search_term,omitempty"`
	Priority   string `json:"priority,omitempty"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
	OrderBy    string `json:"order_by,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

// TaskListResponse is the reply for listing operations.
type TaskListResponse struct {
	Tasks []TaskDTO     `json:"tasks"`
	Total int           `json:"total"`
	Error *ServiceError `json:"error,omitempty"`
}

// ExportTasksRequest is the request for rendering the task report.
type ExportTasksRequest struct {
	Format string `json:"format"`
}

// ExportTasksResponse carries the rendered report.
type ExportTasksResponse struct {
	Filename    string        `json:"filename,omitempty"`
	ContentType string        `json:"content_type,omitempty"`
	Data        []byte        `json:"data,omitempty"`
	Error       *ServiceError `json:"error,omitempty"`
}
