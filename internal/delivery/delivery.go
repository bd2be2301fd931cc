package delivery

import (
	"fmt"
	"strings"

	"packwright/internal/run"
)

// kindOrder fixes the report's group ordering regardless of the order
// operations were applied in.
var kindOrder = []run.OperationKind{
	run.OpArchive,
	run.OpDelete,
	run.OpMove,
	run.OpCreate,
	run.OpShortcut,
}

var kindHeadings = map[run.OperationKind]string{
	run.OpArchive:  "Archived",
	run.OpDelete:   "Removed",
	run.OpMove:     "Moved",
	run.OpCreate:   "Created",
	run.OpShortcut: "Shortcuts",
}

// Group is every operation of one kind, successes and failures together.
type Group struct {
	Kind       run.OperationKind
	Operations []run.FileOperation
}

// Report is the aggregated outcome of a run's file operations.
type Report struct {
	FolderName string
	GuestName  string
	Degraded   bool
	// MissingAnalyses lists analysis tasks that contributed nothing.
	MissingAnalyses []string
	Groups          []Group
	Succeeded       int
	Failed          int
}

// Build aggregates the ordered operation log into a grouped report. Pure:
// it never touches the store.
func Build(r *run.Run, state run.State) Report {
	report := Report{FolderName: r.FolderName}
	if state.Discovery != nil {
		report.GuestName = state.Discovery.GuestName
	}
	if state.Analysis != nil {
		report.Degraded = state.Analysis.Degraded
		report.MissingAnalyses = append(report.MissingAnalyses, state.Analysis.Missing...)
	}

	byKind := make(map[run.OperationKind][]run.FileOperation)
	for _, op := range state.Operations {
		byKind[op.Kind] = append(byKind[op.Kind], op)
		switch op.Outcome {
		case run.OpDone:
			report.Succeeded++
		case run.OpFailed:
			report.Failed++
		}
	}
	for _, kind := range kindOrder {
		if ops, ok := byKind[kind]; ok {
			report.Groups = append(report.Groups, Group{Kind: kind, Operations: ops})
		}
	}
	return report
}

// Render produces the human-readable delivery summary. Every success and
// every failure appears, failures with their cause.
func (r Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delivery summary for %s", r.FolderName)
	if r.GuestName != "" {
		fmt.Fprintf(&b, " (guest: %s)", r.GuestName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d operations succeeded, %d failed\n", r.Succeeded, r.Failed)
	if r.Degraded {
		fmt.Fprintf(&b, "Analysis was degraded; missing: %s\n", strings.Join(r.MissingAnalyses, ", "))
	}

	for _, group := range r.Groups {
		fmt.Fprintf(&b, "\n%s:\n", kindHeadings[group.Kind])
		for _, op := range group.Operations {
			switch op.Outcome {
			case run.OpFailed:
				fmt.Fprintf(&b, "  FAILED %s", op.Source)
				if op.Destination != "" {
					fmt.Fprintf(&b, " -> %s", op.Destination)
				}
				fmt.Fprintf(&b, ": %s\n", op.Detail)
			default:
				fmt.Fprintf(&b, "  %s", op.Source)
				if op.Destination != "" {
					fmt.Fprintf(&b, " -> %s", op.Destination)
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
