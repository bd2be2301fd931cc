package run

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClassificationKind is the preflight verdict for a folder.
type ClassificationKind string

const (
	ClassificationNew             ClassificationKind = "new"
	ClassificationAlreadyPackaged ClassificationKind = "already_packaged"
	ClassificationInvalid         ClassificationKind = "invalid"
)

// Classification records the preflight verdict plus the evidence behind it.
type Classification struct {
	Kind ClassificationKind `json:"kind"`
	// MarkerName is the item that decided the classification (the transcript
	// document, when one was found).
	MarkerName string `json:"marker_name,omitempty"`
	// MarkerLocation is where the marker was found ("root" or the organized
	// assets subfolder name).
	MarkerLocation string `json:"marker_location,omitempty"`
	Detail         string `json:"detail,omitempty"`
}

// Discovery holds what the discovery phase extracted from the folder.
type Discovery struct {
	GuestName      string `json:"guest_name"`
	TranscriptRef  string `json:"transcript_ref"`
	TranscriptName string `json:"transcript_name"`
}

// TaskStatus describes a single analysis task outcome.
type TaskStatus string

const (
	TaskOk       TaskStatus = "ok"
	TaskDegraded TaskStatus = "degraded"
	TaskFailed   TaskStatus = "failed"
)

// TaskResult is the size-bounded structured record one analysis task produced.
type TaskResult struct {
	Name    string          `json:"name"`
	Status  TaskStatus      `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// AnalysisOutcome is the merged fan-in result keyed by task name.
type AnalysisOutcome struct {
	Degraded bool                  `json:"degraded"`
	Results  map[string]TaskResult `json:"results"`
	// Missing lists task names that failed after their retry and contributed
	// no payload.
	Missing []string `json:"missing,omitempty"`
}

// Result returns the payload for a task name when it completed successfully.
func (a *AnalysisOutcome) Result(name string) (TaskResult, bool) {
	if a == nil {
		return TaskResult{}, false
	}
	res, ok := a.Results[name]
	if !ok || res.Status == TaskFailed {
		return TaskResult{}, false
	}
	return res, true
}

// TitleOption is one ranked title candidate presented for approval.
type TitleOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
	Strategy  string `json:"strategy"`
	Rank      int    `json:"rank"`
}

// DecisionKind distinguishes the two approval checkpoints.
type DecisionKind string

const (
	DecisionRepackage DecisionKind = "repackage"
	DecisionTitle     DecisionKind = "title"
)

// Decision records an approval outcome. Immutable once written.
type Decision struct {
	Kind             DecisionKind `json:"kind"`
	SelectedOptionID string       `json:"selected_option_id"`
	DecidedAt        time.Time    `json:"decided_at"`
}

// Approval captures a pending or resolved human checkpoint.
type Approval struct {
	Kind DecisionKind `json:"kind"`
	// Options holds the full presented set; a decision must reference one of
	// these by ID or it is rejected.
	Options     []TitleOption `json:"options"`
	PresentedAt time.Time     `json:"presented_at"`
	Decision    *Decision     `json:"decision,omitempty"`
}

// OptionByID returns the presented option matching id.
func (a *Approval) OptionByID(id string) (TitleOption, bool) {
	if a == nil {
		return TitleOption{}, false
	}
	for _, opt := range a.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return TitleOption{}, false
}

// Document is a generated document written through the document store.
type Document struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// Content holds everything the authoring phase produced.
type Content struct {
	SelectedTitle TitleOption `json:"selected_title"`
	Documents     []Document  `json:"documents"`
}

// OperationKind classifies a file operation.
type OperationKind string

const (
	OpMove     OperationKind = "move"
	OpCreate   OperationKind = "create"
	OpShortcut OperationKind = "shortcut"
	OpArchive  OperationKind = "archive"
	OpDelete   OperationKind = "delete"
)

// OperationOutcome is the terminal state of one file operation.
type OperationOutcome string

const (
	OpPending OperationOutcome = "pending"
	OpDone    OperationOutcome = "done"
	OpFailed  OperationOutcome = "failed"
)

// FileOperation is one entry in the run's ordered operation log. Order of
// application matters: archival precedes overwrite, moves precede shortcut
// creation referencing the moved location.
type FileOperation struct {
	Kind        OperationKind    `json:"kind"`
	Source      string           `json:"source"`
	Destination string           `json:"destination,omitempty"`
	Outcome     OperationOutcome `json:"outcome"`
	Detail      string           `json:"detail,omitempty"`
}

// State is the persisted blob holding every phase's output so far. It is
// sufficient to resume or audit a run without replaying completed phases.
type State struct {
	Classification *Classification  `json:"classification,omitempty"`
	Discovery      *Discovery       `json:"discovery,omitempty"`
	Analysis       *AnalysisOutcome `json:"analysis,omitempty"`
	Approvals      []Approval       `json:"approvals,omitempty"`
	Content        *Content         `json:"content,omitempty"`
	Operations     []FileOperation  `json:"operations,omitempty"`
	Summary        string           `json:"summary,omitempty"`
}

// PendingApproval returns the most recent approval without a decision.
func (s *State) PendingApproval() *Approval {
	for i := len(s.Approvals) - 1; i >= 0; i-- {
		if s.Approvals[i].Decision == nil {
			return &s.Approvals[i]
		}
	}
	return nil
}

// AppendOperations adds entries to the ordered operation log.
func (s *State) AppendOperations(ops ...FileOperation) {
	s.Operations = append(s.Operations, ops...)
}

// State decodes the run's persisted state blob. An empty blob yields a zero
// state, not an error.
func (r *Run) State() (State, error) {
	var state State
	if r.StateJSON == "" {
		return state, nil
	}
	if err := json.Unmarshal([]byte(r.StateJSON), &state); err != nil {
		return State{}, fmt.Errorf("decode run state: %w", err)
	}
	return state, nil
}

// SetState encodes and stores the state blob on the run.
func (r *Run) SetState(state State) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	r.StateJSON = string(encoded)
	return nil
}
