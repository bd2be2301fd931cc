package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Run describes a packaging run in a transport-friendly format.
type Run struct {
	ID               string    `json:"id"`
	FolderName       string    `json:"folderName"`
	FolderRef        string    `json:"folderRef"`
	Status           string    `json:"status"`
	Phase            string    `json:"phase"`
	GuestName        string    `json:"guestName,omitempty"`
	Classification   string    `json:"classification,omitempty"`
	SelectedTitle    string    `json:"selectedTitle,omitempty"`
	DegradedAnalysis bool      `json:"degradedAnalysis,omitempty"`
	PendingApproval  *Approval `json:"pendingApproval,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	CreatedAt        string    `json:"createdAt,omitempty"`
	UpdatedAt        string    `json:"updatedAt,omitempty"`
}

// Approval describes a pending human checkpoint and its presented options.
type Approval struct {
	Kind        string         `json:"kind"`
	Options     []ChoiceOption `json:"options"`
	PresentedAt string         `json:"presentedAt,omitempty"`
}

// ChoiceOption is one selectable answer for a pending approval.
type ChoiceOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Rationale string `json:"rationale,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
	Rank      int    `json:"rank,omitempty"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	RunStats    map[string]int `json:"runStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastRun     *Run           `json:"lastRun,omitempty"`
	PhaseHealth []PhaseHealth  `json:"phaseHealth"`
}

// PhaseHealth mirrors readiness reporting for workflow phases.
type PhaseHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	StoreRoot    string         `json:"storeRoot"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// RunStatsResponse provides a normalized run stats payload.
type RunStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// RunListResponse wraps a collection of runs for API responses.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// RunResponse wraps a single run.
type RunResponse struct {
	Run Run `json:"run"`
}
