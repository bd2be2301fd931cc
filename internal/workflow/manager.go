package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"packwright/internal/config"
	"packwright/internal/notifications"
	"packwright/internal/run"
)

// Manager coordinates run processing using registered phase handlers.
type Manager struct {
	cfg          *config.Config
	store        *run.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor

	phases       []pipelinePhase
	phaseByStart map[run.Status]pipelinePhase
	statusOrder  []run.Status

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastRun *run.Run
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *run.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *run.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.RunPollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}
