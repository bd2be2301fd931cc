package workflow

import (
	"context"

	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastRun     *run.Run
	RunStats    map[run.Status]int
	PhaseHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastRun := m.lastRun
	phases := make([]pipelinePhase, len(m.phases))
	copy(phases, m.phases)
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read run stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(phases))
	for _, phase := range phases {
		if phase.handler == nil {
			continue
		}
		health[phase.name] = phase.handler.HealthCheck(ctx)
	}

	summary := StatusSummary{Running: running, RunStats: stats, PhaseHealth: health}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastRun != nil {
		cp := *lastRun
		summary.LastRun = &cp
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastRun(r *run.Run) {
	m.mu.Lock()
	if r != nil {
		cp := *r
		m.lastRun = &cp
	} else {
		m.lastRun = nil
	}
	m.mu.Unlock()
}
