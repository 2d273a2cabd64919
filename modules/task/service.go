package task

import (
	"context"
	"strings"

	"github.com/example/task-tracker-demo/events"
	"github.com/example/task-tracker-demo/export"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// Service handlers. Errors travel back as response data so the caller can
// tell a validation failure from a missing task; the returned Go error stays
// nil unless the bus itself should see a failure.

func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.manager.Add(ctx, req.Title, req.Description, req.DueDate, req.Priority)
	if err != nil {
		return TaskResponse{Error: serviceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			EventID:  uuid.NewString(),
			TaskID:   t.ID,
			Title:    t.Title,
			Priority: string(t.Priority),
			DueDate:  t.DueDate,
			At:       t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskCreated event", "task_id", t.ID, "error", err)
		}
	}

	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.manager.Get(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: serviceError(err)}, nil
	}
	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.manager.Update(ctx, req.TaskID, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return TaskResponse{Error: serviceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			EventID: uuid.NewString(),
			TaskID:  t.ID,
			Title:   t.Title,
			At:      m.manager.now(),
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskUpdated event", "task_id", t.ID, "error", err)
		}
	}

	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

func (m *Module) toggleTaskStatus(ctx context.Context, req ToggleTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.manager.ToggleStatus(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: serviceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskStatusToggledEvent{
			EventID:   uuid.NewString(),
			TaskID:    t.ID,
			NewStatus: string(t.Status),
			At:        m.manager.now(),
		}
		if err := events.TaskStatusToggledV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskStatusToggled event", "task_id", t.ID, "error", err)
		}
	}

	dto := toTaskDTO(t)
	return TaskResponse{Task: &dto}, nil
}

func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.manager.Delete(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{Error: serviceError(err)}, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			EventID: uuid.NewString(),
			TaskID:  req.TaskID,
			At:      m.manager.now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskDeleted event", "task_id", req.TaskID, "error", err)
		}
	}

	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *Module) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	tasks, err := m.manager.ListAll(ctx, req.OrderBy, req.Direction)
	if err != nil {
		return TaskListResponse{Error: serviceError(err)}, nil
	}
	return TaskListResponse{Tasks: toTaskDTOs(tasks), Total: len(tasks)}, nil
}

func (m *Module) filterTasks(ctx context.Context, req FilterTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	tasks, err := m.manager.Filter(ctx, FilterOptions{
		Status:     req.Status,
		SearchTerm: req.SearchTerm,
		Priority:   req.Priority,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	})
	if err != nil {
		return TaskListResponse{Error: serviceError(err)}, nil
	}

	ascending := strings.ToLower(strings.TrimSpace(req.Direction)) != "desc"
	tasks = m.manager.SortTasks(tasks, req.OrderBy, ascending)
	return TaskListResponse{Tasks: toTaskDTOs(tasks), Total: len(tasks)}, nil
}

func (m *Module) exportTasks(ctx context.Context, req ExportTasksRequest, _ *mono.Msg) (ExportTasksResponse, error) {
	tasks, err := m.manager.ListAll(ctx, "", "")
	if err != nil {
		return ExportTasksResponse{Error: serviceError(err)}, nil
	}

	data, contentType, err := export.Render(req.Format, tasks)
	if err != nil {
		return ExportTasksResponse{
			Error: &ServiceError{Code: ErrCodeValidation, Message: err.Error()},
		}, nil
	}

	return ExportTasksResponse{
		Filename:    "tasks." + export.Extension(req.Format),
		ContentType: contentType,
		Data:        data,
	}, nil
}
