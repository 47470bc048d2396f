package workflow

import (
	"context"

	"clipper/internal/queue"
	"clipper/internal/stage"
)

// Health aggregates manager, stage, and queue readiness for the status API.
type Health struct {
	Running bool
	Stages  []stage.Health
	Queue   queue.HealthSummary
}

// Ready reports whether every stage passed its health check.
func (h Health) Ready() bool {
	for _, s := range h.Stages {
		if !s.Ready {
			return false
		}
	}
	return true
}

// Health runs every stage health check and summarizes queue counts.
func (m *Manager) Health(ctx context.Context) (Health, error) {
	summary, err := m.store.Health(ctx)
	if err != nil {
		return Health{}, err
	}

	health := Health{
		Running: m.Running(),
		Queue:   summary,
	}
	for _, stg := range m.stages {
		if stg.handler == nil {
			health.Stages = append(health.Stages, stage.NotReady(stg.name, "handler not configured"))
			continue
		}
		health.Stages = append(health.Stages, stg.handler.HealthCheck(ctx))
	}
	return health, nil
}
