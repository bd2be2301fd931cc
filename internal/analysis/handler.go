package analysis

import (
	"context"
	"log/slog"

	"packwright/internal/approval"
	"packwright/internal/config"
	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/research"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the analysis phase. It reads the transcript once, fans the
// built-in tasks out, records the merged outcome, and suspends the run for
// title selection.
type Handler struct {
	runner   *Runner
	provider research.Provider
	docs     docstore.Store
	gate     *approval.Gate
	research config.Research
	logger   *slog.Logger
}

// NewHandler builds the analysis phase handler.
func NewHandler(cfg *config.Config, runner *Runner, provider research.Provider, docs docstore.Store, gate *approval.Gate, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		runner:   runner,
		provider: provider,
		docs:     docs,
		gate:     gate,
		research: cfg.Research,
		logger:   logger.With(logging.String(logging.FieldComponent, "analyzer")),
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
	_, err = stage.RequireDiscovery(state)
	return err
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

	transcript, err := h.docs.ReadContent(ctx, disc.TranscriptRef)
	if err != nil {
		return services.Wrap(services.ErrExternal, "analysis", "read_transcript",
			"failed to read transcript", err)
	}

	tasks := BuiltinTasks(Inputs{GuestName: disc.GuestName, Transcript: transcript}, h.provider, h.research)
	outcome, err := h.runner.Run(ctx, tasks)
	if err != nil {
		return err
	}

	state.Analysis = &outcome
	if err := r.SetState(state); err != nil {
		return err
	}

	options, ok := DecodeTitles(&outcome)
	if !ok {
		return services.Wrap(services.ErrExternal, "analysis", TaskTitleGeneration,
			"title generation produced no usable options", nil)
	}
	trendInformed := false
	if refined, ok := RefineTitles(disc.GuestName, &outcome); ok {
		options = refined
		trendInformed = true
	}

	logger.Info("analysis round merged",
		logging.Int("results", len(outcome.Results)),
		logging.Bool("degraded", outcome.Degraded),
		logging.Bool("trend_informed", trendInformed),
		logging.Int("title_options", len(options)),
	)

	return h.gate.Present(ctx, r, approval.NewTitleApproval(options), run.StatusAwaitingTitle)
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	if h.provider == nil {
		return stage.Unhealthy("analyzer", "research provider not configured")
	}
	return stage.Healthy("analyzer")
}
