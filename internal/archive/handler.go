package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"packwright/internal/content"
	"packwright/internal/discovery"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the archive phase, entered only after the re-package
// confirmation. It parks the previous run's artifacts in a dated archive
// folder so authoring can write fresh ones.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler builds the archive phase handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		manager: manager,
		logger:  logger.With(logging.String(logging.FieldComponent, "archiver")),
	}
}

// SetLogger allows the workflow manager to route phase logs per run.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, r *run.Run) error {
	if discovery.GuestFromFolderName(r.FolderName) == "" {
		return services.Wrap(services.ErrValidation, "archive", "guest_name",
			fmt.Sprintf("folder name %q does not follow the <episode> - <guest> convention", r.FolderName), nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, r *run.Run) error {
	logger := logging.WithContext(ctx, h.logger)
	guest := discovery.GuestFromFolderName(r.FolderName)

	ops, err := h.manager.Archive(ctx, r.FolderRef, content.ArtifactNames(guest), time.Now().UTC())
	if err != nil {
		return services.Wrap(services.ErrExternal, "archive", "archive_artifacts",
			"failed to archive previous artifacts", err)
	}

	state, err := r.State()
	if err != nil {
		return err
	}
	state.AppendOperations(ops...)
	if err := r.SetState(state); err != nil {
		return err
	}

	logger.Info("previous artifacts archived", logging.Int("operations", len(ops)))
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("archiver")
}
