package approval

import (
	"context"
	"fmt"
	"time"

	"packwright/internal/run"
	"packwright/internal/services"
)

// Option IDs for the lightweight re-package confirmation.
const (
	RepackageProceed = "proceed"
	RepackageCancel  = "cancel"
)

// Gate owns the durable human checkpoints. Presenting suspends the run;
// deciding resumes it. A suspended run waits indefinitely; there is no
// timeout on a human decision.
type Gate struct {
	store *run.Store
}

// NewGate builds an approval gate over the run store.
func NewGate(store *run.Store) *Gate {
	return &Gate{store: store}
}

// NewRepackageApproval builds the confirmation checkpoint presented when a
// folder classifies as already packaged.
func NewRepackageApproval() run.Approval {
	return run.Approval{
		Kind: run.DecisionRepackage,
		Options: []run.TitleOption{
			{ID: RepackageProceed, Text: "Archive existing artifacts and re-package", Rank: 1},
			{ID: RepackageCancel, Text: "Leave the folder as it is", Rank: 2},
		},
		PresentedAt: time.Now().UTC(),
	}
}

// NewTitleApproval builds the title selection checkpoint from generated
// options.
func NewTitleApproval(options []run.TitleOption) run.Approval {
	return run.Approval{
		Kind:        run.DecisionTitle,
		Options:     options,
		PresentedAt: time.Now().UTC(),
	}
}

// Present records an approval on the run and suspends it at the given
// status. The state is persisted before the run parks, so the decision can
// arrive in a different process than the one that suspended.
func (g *Gate) Present(ctx context.Context, r *run.Run, a run.Approval, suspendStatus run.Status) error {
	if !run.IsSuspendedStatus(suspendStatus) {
		return services.Wrap(services.ErrValidation, "approval", "present",
			fmt.Sprintf("status %s is not a suspension point", suspendStatus), nil)
	}
	if len(a.Options) == 0 {
		return services.Wrap(services.ErrValidation, "approval", "present", "no options to present", nil)
	}

	state, err := r.State()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	state.Approvals = append(state.Approvals, a)
	if err := r.SetState(state); err != nil {
		return fmt.Errorf("persist approval: %w", err)
	}
	r.Status = suspendStatus
	return g.store.Update(ctx, r)
}

// Decide applies a decision to a suspended run and returns the updated run.
//
// A decision referencing an option outside the presented set is rejected
// without mutating anything; the run stays suspended. A valid decision is
// recorded immutably and the run transitions to the next phase: title
// selection resumes content creation, re-package confirmation resumes the
// archive step, and a re-package refusal cancels the run.
func (g *Gate) Decide(ctx context.Context, runID, optionID string) (*run.Run, error) {
	r, err := g.store.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !r.IsSuspended() {
		return nil, services.Wrap(services.ErrValidation, "approval", "decide",
			fmt.Sprintf("run is %s, not awaiting a decision", r.Status), nil)
	}

	state, err := r.State()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	pending := state.PendingApproval()
	if pending == nil {
		return nil, services.Wrap(services.ErrValidation, "approval", "decide",
			"run is suspended but records no pending approval", nil)
	}
	if _, ok := pending.OptionByID(optionID); !ok {
		return nil, services.Wrap(services.ErrValidation, "approval", "decide",
			fmt.Sprintf("option %q was not among the presented choices", optionID), nil)
	}

	pending.Decision = &run.Decision{
		Kind:             pending.Kind,
		SelectedOptionID: optionID,
		DecidedAt:        time.Now().UTC(),
	}

	next, err := resumeStatus(r.Status, pending.Kind, optionID)
	if err != nil {
		return nil, err
	}

	if err := r.SetState(state); err != nil {
		return nil, fmt.Errorf("persist decision: %w", err)
	}
	r.Status = next
	if err := g.store.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func resumeStatus(current run.Status, kind run.DecisionKind, optionID string) (run.Status, error) {
	switch {
	case current == run.StatusAwaitingRepackage && kind == run.DecisionRepackage:
		if optionID == RepackageCancel {
			return run.StatusCancelled, nil
		}
		return run.StatusRepackageApproved, nil
	case current == run.StatusAwaitingTitle && kind == run.DecisionTitle:
		return run.StatusTitleSelected, nil
	default:
		return "", services.Wrap(services.ErrValidation, "approval", "decide",
			fmt.Sprintf("decision kind %s does not match suspension %s", kind, current), nil)
	}
}
