package organizer

import (
	"context"
	"log/slog"

	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the organization phase.
type Handler struct {
	organizer *Organizer
	logger    *slog.Logger
}

// NewHandler builds the organizer phase handler.
func NewHandler(organizer *Organizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		organizer: organizer,
		logger:    logger.With(logging.String(logging.FieldComponent, "organizer")),
	}
}

// SetLogger allows the workflow manager to route phase logs per run.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
		h.organizer.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, r *run.Run) error {
	state, err := r.State()
	if err != nil {
		return err
	}
	if _, err := stage.RequireDiscovery(state); err != nil {
		return err
	}
	if state.Content == nil || len(state.Content.Documents) == 0 {
		return services.Wrap(services.ErrValidation, "organizing", "prepare",
			"no authored documents on record; authoring must run first", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, r *run.Run) error {
	logger := logging.WithContext(ctx, h.logger)

	state, err := r.State()
	if err != nil {
		return err
	}
	disc, err := stage.RequireDiscovery(state)
	if err != nil {
		return err
	}

	ops, err := h.organizer.Apply(ctx, r.FolderRef, disc.GuestName, state.Content.Documents)
	if err != nil {
		return services.Wrap(services.ErrExternal, "organizing", "apply_layout",
			"failed to apply folder layout", err)
	}

	state.AppendOperations(ops...)
	if err := r.SetState(state); err != nil {
		return err
	}

	failed := 0
	for _, op := range ops {
		if op.Outcome == run.OpFailed {
			failed++
		}
	}
	logger.Info("layout applied",
		logging.Int("operations", len(ops)),
		logging.Int("failed", failed),
	)
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("organizer")
}
