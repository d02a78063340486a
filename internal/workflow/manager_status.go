package workflow

import (
	"context"

	"quill/internal/articles"
	"quill/internal/logging"
	"quill/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastItem    *articles.Item
	QueueStats  map[articles.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastItem := m.lastItem
	handlers := make(map[string]stage.Handler, len(m.stages))
	for _, stg := range m.stages {
		handlers[stg.name] = stg.handler
	}
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read content stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(handlers))
	for name, handler := range handlers {
		health[name] = handler.HealthCheck(ctx)
	}

	summary := StatusSummary{Running: running, QueueStats: stats, StageHealth: health}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastItem != nil {
		copied := *lastItem
		summary.LastItem = &copied
	}
	return summary
}
