package discovery

import (
	"context"
	"log/slog"

	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the discovery phase.
type Handler struct {
	discoverer *Discoverer
	logger     *slog.Logger
}

// NewHandler builds the discovery phase handler.
func NewHandler(discoverer *Discoverer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		discoverer: discoverer,
		logger:     logger.With(logging.String(logging.FieldComponent, "discoverer")),
	}
}

// SetLogger allows the workflow manager to route phase logs per run.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, r *run.Run) error {
	state, err := r.State()
	if err != nil {
		return err
	}
	if state.Classification == nil {
		return services.Wrap(services.ErrValidation, "discovery", "prepare",
			"run has no classification; classification must run first", nil)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, r *run.Run) error {
	logger := logging.WithContext(ctx, h.logger)

	state, err := r.State()
	if err != nil {
		return err
	}

	disc, err := h.discoverer.Discover(ctx, r.FolderRef, r.FolderName, *state.Classification)
	if err != nil {
		return err
	}
	state.Discovery = &disc
	if err := r.SetState(state); err != nil {
		return err
	}

	logger.Info("folder inputs discovered",
		logging.String("guest", disc.GuestName),
		logging.String("transcript", disc.TranscriptName),
	)
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("discoverer")
}
