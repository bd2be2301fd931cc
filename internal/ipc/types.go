package ipc

import "packwright/internal/api"

// StartRequest triggers daemon workflow startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon workflow.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// Run mirrors the API run DTO for internal IPC callers.
type Run = api.Run

// PhaseHealth describes readiness of a workflow phase.
type PhaseHealth = api.PhaseHealth

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running      bool           `json:"running"`
	RunStats     map[string]int `json:"run_stats"`
	LastError    string         `json:"last_error"`
	LastRun      *Run           `json:"last_run"`
	LockPath     string         `json:"lock_path"`
	DatabasePath string         `json:"database_path"`
	StoreRoot    string         `json:"store_root"`
	PhaseHealth  []PhaseHealth  `json:"phase_health"`
	PID          int            `json:"pid"`
}

// RunStartRequest enqueues a packaging run for a named folder.
type RunStartRequest struct {
	Folder string `json:"folder"`
}

// RunStartResponse contains the created run.
type RunStartResponse struct {
	Run Run `json:"run"`
}

// RunListRequest filters run listing by status.
type RunListRequest struct {
	Statuses []string `json:"statuses"`
}

// RunListResponse contains run entries.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// RunDescribeRequest fetches a single run by id.
type RunDescribeRequest struct {
	ID string `json:"id"`
}

// RunDescribeResponse contains a single run.
type RunDescribeResponse struct {
	Run Run `json:"run"`
}

// RunDecideRequest answers a pending approval on a suspended run.
type RunDecideRequest struct {
	ID       string `json:"id"`
	OptionID string `json:"option_id"`
}

// RunDecideResponse contains the resumed run.
type RunDecideResponse struct {
	Run Run `json:"run"`
}

// RunCancelRequest cancels a suspended run.
type RunCancelRequest struct {
	ID string `json:"id"`
}

// RunCancelResponse contains the cancelled run.
type RunCancelResponse struct {
	Run Run `json:"run"`
}

// RunClearCompletedRequest removes completed runs.
type RunClearCompletedRequest struct{}

// RunClearCompletedResponse reports number of removed entries.
type RunClearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

// RunClearFailedRequest removes failed runs.
type RunClearFailedRequest struct{}

// RunClearFailedResponse reports number of removed entries.
type RunClearFailedResponse struct {
	Removed int64 `json:"removed"`
}

// RunResetRequest rolls in-flight runs back to their phase start.
type RunResetRequest struct{}

// RunResetResponse reports number of runs reset.
type RunResetResponse struct {
	Updated int64 `json:"updated"`
}

// RunRetryRequest retries failed runs. Empty list means all failed runs.
type RunRetryRequest struct {
	IDs []string `json:"ids"`
}

// RunRetryResponse reports number of retried runs.
type RunRetryResponse struct {
	Updated int64 `json:"updated"`
}

// RunHealthRequest fetches aggregate diagnostics.
type RunHealthRequest struct{}

// RunHealthResponse reports run health information.
type RunHealthResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Suspended int `json:"suspended"`
	Failed    int `json:"failed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string `json:"db_path"`
	DatabaseExists   bool   `json:"database_exists"`
	DatabaseReadable bool   `json:"database_readable"`
	TableExists      bool   `json:"table_exists"`
	IntegrityCheck   bool   `json:"integrity_check"`
	TotalRuns        int    `json:"total_runs"`
	Error            string `json:"error"`
}

// LogTailRequest fetches log lines starting at a byte offset.
type LogTailRequest struct {
	Offset int64 `json:"offset"`
	Limit  int   `json:"limit"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
