package delivery

import (
	"context"
	"log/slog"

	"packwright/internal/content"
	"packwright/internal/discovery"
	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the delivery phase. It renders the final summary from the
// operation log, writes it into the folder root, and finishes the run.
type Handler struct {
	docs   docstore.Store
	logger *slog.Logger
}

// NewHandler builds the delivery phase handler.
func NewHandler(docs docstore.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		docs:   docs,
		logger: logger.With(logging.String(logging.FieldComponent, "deliverer")),
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

	state, err := r.State()
	if err != nil {
		return err
	}
	report := Build(r, state)
	rendered := report.Render()

	guest := report.GuestName
	if guest == "" {
		guest = discovery.GuestFromFolderName(r.FolderName)
	}
	ref, err := h.ensureSummary(ctx, r.FolderRef, content.DeliverySummaryName(guest), rendered)
	if err != nil {
		return services.Wrap(services.ErrExternal, "delivery", "write_summary",
			"failed to write delivery summary", err)
	}

	state.Summary = rendered
	// The summary reports on the operations before it, so its own creation
	// is recorded after the report is built.
	state.AppendOperations(run.FileOperation{
		Kind:        run.OpCreate,
		Source:      r.FolderRef,
		Destination: ref,
		Outcome:     run.OpDone,
		Detail:      "delivery summary",
	})
	if err := r.SetState(state); err != nil {
		return err
	}

	logger.Info("delivery summary written",
		logging.String("ref", ref),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Bool("degraded", report.Degraded),
	)
	return nil
}

// ensureSummary creates the summary document, reusing an identically named
// one left by an interrupted earlier attempt.
func (h *Handler) ensureSummary(ctx context.Context, folderRef, name, text string) (string, error) {
	ref, err := h.docs.CreateDocument(ctx, folderRef, name, text)
	if err == nil {
		return ref, nil
	}
	if !docstore.IsConflict(err) {
		return "", err
	}
	items, listErr := h.docs.ListItems(ctx, folderRef)
	if listErr != nil {
		return "", listErr
	}
	for _, item := range items {
		if item.Kind == docstore.KindDocument && item.Name == name {
			return item.Ref, nil
		}
	}
	return "", err
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("deliverer")
}
