package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the contract driving adapters (the HTTP API) use to reach the
// task module without referencing it directly.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, taskID int64) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	ToggleTaskStatus(ctx context.Context, taskID int64) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID int64) (*DeleteTaskResponse, error)
	ListTasks(ctx context.Context, orderBy, direction string) (*TaskListResponse, error)
	FilterTasks(ctx context.Context, req *FilterTasksRequest) (*TaskListResponse, error)
	ExportTasks(ctx context.Context, format string) (*ExportTasksResponse, error)
}

// taskAdapter implements TaskPort over the service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for the task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, taskID int64) (*TaskResponse, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) ToggleTaskStatus(ctx context.Context, taskID int64) (*TaskResponse, error) {
	req := ToggleTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "toggle-task-status", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("toggle-task-status service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, taskID int64) (*DeleteTaskResponse, error) {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("delete-task service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) ListTasks(ctx context.Context, orderBy, direction string) (*TaskListResponse, error) {
	req := ListTasksRequest{OrderBy: orderBy, Direction: direction}
	var resp TaskListResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) FilterTasks(ctx context.Context, req *FilterTasksRequest) (*TaskListResponse, error) {
	var resp TaskListResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "filter-tasks", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("filter-tasks service call failed: %w", err)
	}
	return &resp, nil
}

func (a *taskAdapter) ExportTasks(ctx context.Context, format string) (*ExportTasksResponse, error) {
	req := ExportTasksRequest{Format: format}
	var resp ExportTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "export-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("export-tasks service call failed: %w", err)
	}
	return &resp, nil
}
