package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"packwright/internal/logging"
	"packwright/internal/run"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow phases not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "workflow-runner"))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleRuns(ctx, logger); err != nil {
			logger.Warn("reclaim stale processing failed; stuck runs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check run database access"),
			)
		}

		r, err := m.nextRun(ctx)
		if err != nil {
			m.handleNextRunError(ctx, logger, err)
			continue
		}
		if r == nil {
			m.waitForRunOrShutdown(ctx)
			continue
		}

		if err := m.processRun(ctx, logger, r); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) nextRun(ctx context.Context) (*run.Run, error) {
	m.mu.RLock()
	order := m.statusOrder
	m.mu.RUnlock()
	if len(order) == 0 {
		return nil, nil
	}
	return m.store.NextForStatuses(ctx, order...)
}

func (m *Manager) handleNextRunError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next run",
		logging.Error(err),
		logging.String(logging.FieldEventType, "run_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check run database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForRunOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
