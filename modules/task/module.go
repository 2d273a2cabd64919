package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module is the core domain module: it owns the store, applies the business
// rules through the manager, and exposes task operations as request-reply
// services.
type Module struct {
	store    Store
	manager  *Manager
	logger   types.Logger
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the task module over the given store. Options are
// forwarded to the manager.
func NewModule(store Store, logger types.Logger, opts ...Option) *Module {
	return &Module{
		store:   store,
		manager: NewManager(store, opts...),
		logger:  logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "task"
}

// Manager exposes the business-rule layer (used by tests and tooling).
func (m *Module) Manager() *Manager {
	return m.manager
}

// SetEventBus receives the event bus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskStatusToggledV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers the task request-reply services. The framework
// prefixes the names, so "create-task" becomes "services.task.create-task".
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "toggle-task-status", json.Unmarshal, json.Marshal, m.toggleTaskStatus,
	); err != nil {
		return fmt.Errorf("failed to register toggle-task-status service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "filter-tasks", json.Unmarshal, json.Marshal, m.filterTasks,
	); err != nil {
		return fmt.Errorf("failed to register filter-tasks service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "export-tasks", json.Unmarshal, json.Marshal, m.exportTasks,
	); err != nil {
		return fmt.Errorf("failed to register export-tasks service: %w", err)
	}

	m.logger.Info("Registered task services",
		"services", []string{
			"create-task", "get-task", "update-task", "toggle-task-status",
			"delete-task", "list-tasks", "filter-tasks", "export-tasks",
		})
	return nil
}

// Start verifies the store is reachable.
func (m *Module) Start(ctx context.Context) error {
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("task store unavailable: %w", err)
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, task events will not be published")
	}
	m.logger.Info("Task module started", "backend", m.store.Name())
	return nil
}

// Stop closes the store.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Task module stopping", "backend", m.store.Name())
	return m.store.Close()
}

// Health reports whether the backing store is reachable.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": m.store.Name(),
		},
	}
}
