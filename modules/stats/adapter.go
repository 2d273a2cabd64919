package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort defines the interface for interacting with the stats module.
// Consumers should use this interface instead of directly referencing the Module.
type StatsPort interface {
	Summary(ctx context.Context) (map[string]any, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityLog, error)
}

// statsAdapter implements StatsPort using the service container.
type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a new adapter for the stats services.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats adapter requires non-nil ServiceContainer")
	}
	return &statsAdapter{container: container}
}

// Summary retrieves the usage summary.
func (a *statsAdapter) Summary(ctx context.Context) (map[string]any, error) {
	client, err := a.container.GetRequestReplyService("get-stats-summary")
	if err != nil {
		return nil, fmt.Errorf("failed to get get-stats-summary service: %w", err)
	}

	resp, err := client.Call(ctx, []byte{})
	if err != nil {
		return nil, fmt.Errorf("get-stats-summary service call failed: %w", err)
	}

	var summary map[string]any
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return summary, nil
}

// RecentActivity retrieves the most recent activity logs.
func (a *statsAdapter) RecentActivity(ctx context.Context, limit int) ([]ActivityLog, error) {
	req := struct {
		Limit int `json:"limit"`
	}{
		Limit: limit,
	}

	var logs []ActivityLog
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-recent-activity", json.Marshal, json.Unmarshal, &req, &logs,
	); err != nil {
		return nil, fmt.Errorf("get-recent-activity service call failed: %w", err)
	}
	return logs, nil
}
