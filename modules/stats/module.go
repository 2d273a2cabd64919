package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/task-tracker-demo/events"
)

// Module implements the stats consumer module.
// It consumes task events and tracks usage counters.
type Module struct {
	store  *StatsStore
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStatsStore(),
		logger: logger.WithModule("stats"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Store returns the underlying stats store.
func (m *Module) Store() *StatsStore {
	return m.store
}

// RegisterEventConsumers registers event handlers for task events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	consumers := []struct {
		event   string
		handler func(context.Context, *mono.Msg) error
	}{
		{"TaskCreated", m.handleTaskCreated},
		{"TaskUpdated", m.handleTaskUpdated},
		{"TaskStatusToggled", m.handleTaskStatusToggled},
		{"TaskDeleted", m.handleTaskDeleted},
	}

	registered := make([]string, 0, len(consumers))
	for _, c := range consumers {
		def, ok := registry.GetEventByName(c.event, "v1", "task")
		if !ok {
			return fmt.Errorf("event %s.v1 not found from task module", c.event)
		}
		if err := registry.RegisterEventConsumer(def, c.handler, m); err != nil {
			return fmt.Errorf("failed to register %s consumer: %w", c.event, err)
		}
		registered = append(registered, c.event+".v1")
	}

	m.logger.Info("Registered event consumers", "events", registered)
	return nil
}

// handleTaskCreated processes TaskCreated events.
func (m *Module) handleTaskCreated(_ context.Context, msg *mono.Msg) error {
	var event events.TaskCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		m.logger.Error("Failed to unmarshal TaskCreated event", "error", err)
		return nil // Don't retry on unmarshal errors
	}

	m.store.RecordCreated(event.TaskID, event.Title, event.Priority, event.At)
	m.logger.Debug("Recorded task creation", "taskID", event.TaskID, "priority", event.Priority)
	return nil
}

// handleTaskUpdated processes TaskUpdated events.
func (m *Module) handleTaskUpdated(_ context.Context, msg *mono.Msg) error {
	var event events.TaskUpdatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		m.logger.Error("Failed to unmarshal TaskUpdated event", "error", err)
		return nil // Don't retry on unmarshal errors
	}

	m.store.RecordUpdated(event.TaskID, event.Title, event.At)
	m.logger.Debug("Recorded task update", "taskID", event.TaskID)
	return nil
}

// handleTaskStatusToggled processes TaskStatusToggled events.
func (m *Module) handleTaskStatusToggled(_ context.Context, msg *mono.Msg) error {
	var event events.TaskStatusToggledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		m.logger.Error("Failed to unmarshal TaskStatusToggled event", "error", err)
		return nil // Don't retry on unmarshal errors
	}

	m.store.RecordToggled(event.TaskID, event.NewStatus, event.At)
	m.logger.Debug("Recorded status toggle", "taskID", event.TaskID, "newStatus", event.NewStatus)
	return nil
}

// handleTaskDeleted processes TaskDeleted events.
func (m *Module) handleTaskDeleted(_ context.Context, msg *mono.Msg) error {
	var event events.TaskDeletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		m.logger.Error("Failed to unmarshal TaskDeleted event", "error", err)
		return nil // Don't retry on unmarshal errors
	}

	m.store.RecordDeleted(event.TaskID, event.At)
	m.logger.Debug("Recorded task deletion", "taskID", event.TaskID)
	return nil
}

// RegisterServices registers this module's services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := container.RegisterRequestReplyService("get-stats-summary", m.handleGetSummary); err != nil {
		return fmt.Errorf("failed to register get-stats-summary service: %w", err)
	}

	if err := container.RegisterRequestReplyService("get-recent-activity", m.handleGetActivity); err != nil {
		return fmt.Errorf("failed to register get-recent-activity service: %w", err)
	}

	m.logger.Info("Registered stats services",
		"services", []string{"get-stats-summary", "get-recent-activity"})
	return nil
}

// handleGetSummary handles get-stats-summary service requests.
func (m *Module) handleGetSummary(ctx context.Context, msg *mono.Msg) ([]byte, error) {
	return json.Marshal(m.store.Summary())
}

// handleGetActivity handles get-recent-activity service requests.
func (m *Module) handleGetActivity(ctx context.Context, msg *mono.Msg) ([]byte, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return nil, fmt.Errorf("invalid request: %w", err)
		}
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 500 {
		req.Limit = 500
	}

	return json.Marshal(m.store.RecentActivity(req.Limit))
}

// Start initializes the stats module.
func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(ctx context.Context) error {
	m.logger.Info("Stats module stopped")
	return nil
}
