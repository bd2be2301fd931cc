package authoring

import (
	"context"
	"log/slog"

	"packwright/internal/analysis"
	"packwright/internal/content"
	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
	"packwright/internal/stage"
)

// Handler is the content creation phase. It writes the four generated
// documents into the folder root using the approved title.
type Handler struct {
	docs   docstore.Store
	logger *slog.Logger
}

// NewHandler builds the authoring phase handler.
func NewHandler(docs docstore.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		docs:   docs,
		logger: logger.With(logging.String(logging.FieldComponent, "author")),
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
	if _, err := stage.RequireDiscovery(state); err != nil {
		return err
	}
	_, _, err = selectedTitle(state)
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
	title, options, err := selectedTitle(state)
	if err != nil {
		return err
	}

	summary, ok := analysis.DecodeSummary(state.Analysis)
	if !ok {
		logger.Warn("transcript summary unavailable, authoring from title alone",
			logging.String(logging.FieldEventType, "summary_missing"))
	}

	guest := disc.GuestName
	bodies := []struct {
		name string
		text string
	}{
		{content.DescriptionName(guest), content.Description(guest, title, summary)},
		{content.TitleOptionsName(guest), content.TitleOptionsDoc(options, title.ID)},
		{content.HostSocialName(guest), content.HostSocialPosts(guest, title, summary)},
		{content.GuestSocialName(guest), content.GuestSocialPosts(guest, title, summary)},
	}

	var docs []run.Document
	var ops []run.FileOperation
	for _, body := range bodies {
		ref, err := h.ensureDocument(ctx, r.FolderRef, body.name, body.text)
		if err != nil {
			return services.Wrap(services.ErrExternal, "authoring", "create_document",
				"failed to write "+body.name, err)
		}
		docs = append(docs, run.Document{Name: body.name, Ref: ref})
		ops = append(ops, run.FileOperation{
			Kind:        run.OpCreate,
			Source:      r.FolderRef,
			Destination: ref,
			Outcome:     run.OpDone,
			Detail:      "document",
		})
	}

	state.Content = &run.Content{SelectedTitle: title, Documents: docs}
	state.AppendOperations(ops...)
	if err := r.SetState(state); err != nil {
		return err
	}

	logger.Info("documents authored",
		logging.String("selected_title", title.Text),
		logging.Int("documents", len(docs)),
	)
	return nil
}

// ensureDocument creates the document, reusing an identically named one left
// by an interrupted earlier attempt.
func (h *Handler) ensureDocument(ctx context.Context, folderRef, name, text string) (string, error) {
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
	return stage.Healthy("author")
}

// selectedTitle returns the approved title option and the full presented set.
func selectedTitle(state run.State) (run.TitleOption, []run.TitleOption, error) {
	for i := len(state.Approvals) - 1; i >= 0; i-- {
		a := state.Approvals[i]
		if a.Kind != run.DecisionTitle || a.Decision == nil {
			continue
		}
		option, ok := a.OptionByID(a.Decision.SelectedOptionID)
		if !ok {
			return run.TitleOption{}, nil, services.Wrap(services.ErrValidation, "authoring", "selected_title",
				"recorded decision references an unknown option", nil)
		}
		return option, a.Options, nil
	}
	return run.TitleOption{}, nil, services.Wrap(services.ErrValidation, "authoring", "selected_title",
		"no decided title approval on record", nil)
}
