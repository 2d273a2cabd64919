package api

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/task-tracker-demo/modules/task"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	// Health check endpoint
	m.app.Get("/health", m.healthHandler)

	// API v1 routes
	api := m.app.Group("/api/v1")

	// Task endpoints. The export route must precede the :id routes so
	// "export" is not parsed as a task id.
	tasks := api.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/export", m.exportTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/toggle", m.toggleTask)

	// Stats endpoints
	api.Get("/stats", m.getStats)
	api.Get("/stats/activity", m.getActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.port,
		},
	})
}

// parseTaskID extracts the :id path parameter as a positive integer.
func parseTaskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("task id must be a positive integer")
	}
	return id, nil
}

// statusForCode maps service error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case task.ErrCodeValidation:
		return fiber.StatusBadRequest
	case task.ErrCodeNotFound:
		return fiber.StatusNotFound
	case task.ErrCodeDuplicate:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceErrorResponse renders a service-level error with the matching HTTP status.
func serviceErrorResponse(c *fiber.Ctx, e *task.ServiceError) error {
	return c.Status(statusForCode(e.Code)).JSON(ErrorResponse{
		Error:   e.Code,
		Message: e.Message,
	})
}

func invalidRequestResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

func internalErrorResponse(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}

func toTaskResponse(t *task.TaskDTO) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

func toListTasksResponse(tasks []task.TaskDTO, total int) ListTasksResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return ListTasksResponse{Tasks: out, Total: total}
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequestResponse(c, "Invalid request body")
	}

	resp, err := m.taskAdapter.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(resp.Task))
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := parseTaskID(c)
	if err != nil {
		return invalidRequestResponse(c, err.Error())
	}

	resp, err := m.taskAdapter.GetTask(c.UserContext(), id)
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.JSON(toTaskResponse(resp.Task))
}

// listTasks handles GET /api/v1/tasks.
// Without filter parameters it returns every task ordered by order_by and
// direction. With any of status, q, priority, from or to it returns the
// matching subset instead.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	var (
		status    = c.Query("status")
		term      = c.Query("q")
		priority  = c.Query("priority")
		from      = c.Query("from")
		to        = c.Query("to")
		orderBy   = c.Query("order_by")
		direction = c.Query("direction")
	)

	filtered := status != "" || term != "" || priority != "" || from != "" || to != ""

	var (
		resp *task.TaskListResponse
		err  error
	)
	if filtered {
		resp, err = m.taskAdapter.FilterTasks(c.UserContext(), &task.FilterTasksRequest{
			Status:     status,
			SearchTerm: term,
			Priority:   priority,
			DateFrom:   from,
			DateTo:     to,
			OrderBy:    orderBy,
			Direction:  direction,
		})
	} else {
		resp, err = m.taskAdapter.ListTasks(c.UserContext(), orderBy, direction)
	}
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.JSON(toListTasksResponse(resp.Tasks, resp.Total))
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := parseTaskID(c)
	if err != nil {
		return invalidRequestResponse(c, err.Error())
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequestResponse(c, "Invalid request body")
	}

	resp, err := m.taskAdapter.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.JSON(toTaskResponse(resp.Task))
}

// toggleTask handles POST /api/v1/tasks/:id/toggle.
func (m *APIModule) toggleTask(c *fiber.Ctx) error {
	id, err := parseTaskID(c)
	if err != nil {
		return invalidRequestResponse(c, err.Error())
	}

	resp, err := m.taskAdapter.ToggleTaskStatus(c.UserContext(), id)
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.JSON(toTaskResponse(resp.Task))
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := parseTaskID(c)
	if err != nil {
		return invalidRequestResponse(c, err.Error())
	}

	resp, err := m.taskAdapter.DeleteTask(c.UserContext(), id)
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// exportTasks handles GET /api/v1/tasks/export.
func (m *APIModule) exportTasks(c *fiber.Ctx) error {
	format := c.Query("format", "csv")

	resp, err := m.taskAdapter.ExportTasks(c.UserContext(), format)
	if err != nil {
		return internalErrorResponse(c, err)
	}
	if resp.Error != nil {
		return serviceErrorResponse(c, resp.Error)
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resp.Filename))
	return c.Send(resp.Data)
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	summary, err := m.statsAdapter.Summary(c.UserContext())
	if err != nil {
		return internalErrorResponse(c, err)
	}
	return c.JSON(summary)
}

// getActivity handles GET /api/v1/stats/activity.
func (m *APIModule) getActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	logs, err := m.statsAdapter.RecentActivity(c.UserContext(), limit)
	if err != nil {
		return internalErrorResponse(c, err)
	}
	return c.JSON(logs)
}
