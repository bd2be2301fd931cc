package preflight

import (
	"context"
	"log/slog"

	"packwright/internal/approval"
	"packwright/internal/config"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the classification phase. It records the preflight verdict and
// suspends already-packaged folders for the re-package confirmation.
type Handler struct {
	classifier *Classifier
	gate       *approval.Gate
	cfg        *config.Config
	logger     *slog.Logger
}

// NewHandler builds the classifier phase handler.
func NewHandler(cfg *config.Config, classifier *Classifier, gate *approval.Gate, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		classifier: classifier,
		gate:       gate,
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "classifier")),
	}
}

// SetLogger allows the workflow manager to route phase logs per run.
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) Prepare(ctx context.Context, r *run.Run) error {
	return nil
}

func (h *Handler) Execute(ctx context.Context, r *run.Run) error {
	logger := logging.WithContext(ctx, h.logger)

	classification, err := h.classifier.Classify(ctx, r.FolderRef)
	if err != nil {
		return services.Wrap(services.ErrExternal, "preflight", "classify", "folder inspection failed", err)
	}

	state, err := r.State()
	if err != nil {
		return err
	}
	state.Classification = &classification
	if err := r.SetState(state); err != nil {
		return err
	}

	logger.Info("folder classified",
		logging.String("kind", string(classification.Kind)),
		logging.String("marker", classification.MarkerName),
		logging.String("marker_location", classification.MarkerLocation),
	)

	switch classification.Kind {
	case run.ClassificationInvalid:
		return services.Wrap(services.ErrValidation, "preflight", "classify", classification.Detail, nil)
	case run.ClassificationAlreadyPackaged:
		return h.gate.Present(ctx, r, approval.NewRepackageApproval(), run.StatusAwaitingRepackage)
	default:
		return nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	result := CheckDirectoryAccess("store root", h.cfg.StoreRoot())
	if !result.Passed {
		return stage.Unhealthy("classifier", result.Detail)
	}
	return stage.Healthy("classifier")
}
