package api

import (
	"slices"
	"time"

	"packwright/internal/run"
	"packwright/internal/stage"
	"packwright/internal/workflow"
)

// FromRun converts a run record to its API representation. State details
// that fail to decode are omitted rather than failing the whole payload.
func FromRun(r *run.Run) Run {
	if r == nil {
		return Run{}
	}

	dto := Run{
		ID:           r.ID,
		FolderName:   r.FolderName,
		FolderRef:    r.FolderRef,
		Status:       string(r.Status),
		Phase:        string(run.PhaseForStatus(r.Status)),
		ErrorMessage: r.ErrorMessage,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.UTC().Format(dateTimeFormat)
	}

	state, err := r.State()
	if err != nil {
		return dto
	}
	if state.Discovery != nil {
		dto.GuestName = state.Discovery.GuestName
	}
	if state.Classification != nil {
		dto.Classification = string(state.Classification.Kind)
	}
	if state.Analysis != nil {
		dto.DegradedAnalysis = state.Analysis.Degraded
	}
	if state.Content != nil {
		dto.SelectedTitle = state.Content.SelectedTitle.Text
	}
	dto.Summary = state.Summary
	if pending := state.PendingApproval(); pending != nil && r.IsSuspended() {
		dto.PendingApproval = fromApproval(pending)
	}
	return dto
}

// FromRuns converts a slice of run records into API DTOs.
func FromRuns(runs []*run.Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		out = append(out, FromRun(r))
	}
	return out
}

func fromApproval(a *run.Approval) *Approval {
	options := make([]ChoiceOption, 0, len(a.Options))
	for _, opt := range a.Options {
		options = append(options, ChoiceOption{
			ID:        opt.ID,
			Text:      opt.Text,
			Rationale: opt.Rationale,
			Strategy:  opt.Strategy,
			Rank:      opt.Rank,
		})
	}
	return &Approval{
		Kind:        string(a.Kind),
		Options:     options,
		PresentedAt: FormatTime(a.PresentedAt),
	}
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	stats := make(map[string]int, len(summary.RunStats))
	for status, count := range summary.RunStats {
		stats[string(status)] = count
	}

	wf := WorkflowStatus{
		Running:     summary.Running,
		RunStats:    stats,
		PhaseHealth: PhaseHealthSlice(summary.PhaseHealth),
	}
	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastRun != nil {
		last := FromRun(summary.LastRun)
		wf.LastRun = &last
	}
	return wf
}

// PhaseHealthSlice converts a phase health map into a deterministic slice.
func PhaseHealthSlice(health map[string]stage.Health) []PhaseHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]PhaseHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, PhaseHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// MergeRunStats produces a string-keyed representation of run stats.
func MergeRunStats(stats map[run.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
