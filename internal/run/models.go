package run

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a packaging run.
type Status string

const (
	StatusPending           Status = "pending"
	StatusClassifying       Status = "classifying"
	StatusAwaitingRepackage Status = "awaiting_repackage"
	StatusRepackageApproved Status = "repackage_approved"
	StatusArchiving         Status = "archiving"
	StatusClassified        Status = "classified"
	StatusDiscovering       Status = "discovering"
	StatusDiscovered        Status = "discovered"
	StatusAnalyzing         Status = "analyzing"
	StatusAwaitingTitle     Status = "awaiting_title"
	StatusTitleSelected     Status = "title_selected"
	StatusAuthoring         Status = "authoring"
	StatusAuthored          Status = "authored"
	StatusOrganizing        Status = "organizing"
	StatusOrganized         Status = "organized"
	StatusDelivering        Status = "delivering"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
)

// DaemonStopReason is the error message set when runs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusClassifying,
	StatusAwaitingRepackage,
	StatusRepackageApproved,
	StatusArchiving,
	StatusClassified,
	StatusDiscovering,
	StatusDiscovered,
	StatusAnalyzing,
	StatusAwaitingTitle,
	StatusTitleSelected,
	StatusAuthoring,
	StatusAuthored,
	StatusOrganizing,
	StatusOrganized,
	StatusDelivering,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusClassifying: {},
	StatusArchiving:   {},
	StatusDiscovering: {},
	StatusAnalyzing:   {},
	StatusAuthoring:   {},
	StatusOrganizing:  {},
	StatusDelivering:  {},
}

var suspendedStatuses = map[Status]struct{}{
	StatusAwaitingRepackage: {},
	StatusAwaitingTitle:     {},
}

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// statusRank orders statuses along the run's single forward path. Transitions
// may never decrease rank within one execution; failed and cancelled are
// reachable from anywhere.
var statusRank = map[Status]int{
	StatusPending:           0,
	StatusClassifying:       1,
	StatusAwaitingRepackage: 2,
	StatusRepackageApproved: 3,
	StatusArchiving:         4,
	StatusClassified:        5,
	StatusDiscovering:       6,
	StatusDiscovered:        7,
	StatusAnalyzing:         8,
	StatusAwaitingTitle:     9,
	StatusTitleSelected:     10,
	StatusAuthoring:         11,
	StatusAuthored:          12,
	StatusOrganizing:        13,
	StatusOrganized:         14,
	StatusDelivering:        15,
	StatusCompleted:         16,
	StatusFailed:            100,
	StatusCancelled:         100,
}

type statusTransition struct {
	from Status
	to   Status
}

// processingRollbacks map an in-flight status back to the start of its phase,
// used when reclaiming runs whose daemon died mid-phase.
var processingRollbacks = []statusTransition{
	{from: StatusClassifying, to: StatusPending},
	{from: StatusArchiving, to: StatusRepackageApproved},
	{from: StatusDiscovering, to: StatusClassified},
	{from: StatusAnalyzing, to: StatusDiscovered},
	{from: StatusAuthoring, to: StatusTitleSelected},
	{from: StatusOrganizing, to: StatusAuthored},
	{from: StatusDelivering, to: StatusOrganized},
}

// Phase is the coarse public phase exposed on the control surface.
type Phase string

const (
	PhasePreflight       Phase = "preflight"
	PhaseDiscovery       Phase = "discovery"
	PhaseAnalysis        Phase = "analysis"
	PhaseApproval        Phase = "approval"
	PhaseContentCreation Phase = "content_creation"
	PhaseOrganization    Phase = "organization"
	PhaseDelivery        Phase = "delivery"
	PhaseSuspended       Phase = "suspended"
	PhaseCompleted       Phase = "completed"
	PhaseFailed          Phase = "failed"
	PhaseCancelled       Phase = "cancelled"
)

// PhaseForStatus maps a fine-grained status to its public phase.
func PhaseForStatus(status Status) Phase {
	switch status {
	case StatusPending, StatusClassifying, StatusRepackageApproved, StatusArchiving:
		return PhasePreflight
	case StatusClassified, StatusDiscovering:
		return PhaseDiscovery
	case StatusDiscovered, StatusAnalyzing:
		return PhaseAnalysis
	case StatusAwaitingRepackage, StatusAwaitingTitle:
		return PhaseSuspended
	case StatusTitleSelected, StatusAuthoring, StatusAuthored:
		return PhaseContentCreation
	case StatusOrganizing, StatusOrganized:
		return PhaseOrganization
	case StatusDelivering:
		return PhaseDelivery
	case StatusCompleted:
		return PhaseCompleted
	case StatusFailed:
		return PhaseFailed
	case StatusCancelled:
		return PhaseCancelled
	default:
		return PhaseFailed
	}
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total     int
	Active    int
	Suspended int
	Failed    int
	Completed int
	Cancelled int
}

// Run represents a packaging run persisted in SQLite.
type Run struct {
	ID            string
	FolderRef     string
	FolderName    string
	Status        Status
	Revision      int64
	StateJSON     string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastHeartbeat *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight phase.
func (r Run) IsProcessing() bool {
	_, ok := processingStatuses[r.Status]
	return ok
}

// IsSuspended reports whether the run is parked at a human decision point.
func (r Run) IsSuspended() bool {
	_, ok := suspendedStatuses[r.Status]
	return ok
}

// IsTerminal reports whether the run has finished for good.
func (r Run) IsTerminal() bool {
	_, ok := terminalStatuses[r.Status]
	return ok
}

// IsActive reports whether the run still holds its folder's exclusivity slot.
func (r Run) IsActive() bool {
	return !r.IsTerminal()
}

// IsProcessingStatus reports whether a status reflects an in-flight phase.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsSuspendedStatus reports whether a status is a durable suspension point.
func IsSuspendedStatus(status Status) bool {
	_, ok := suspendedStatuses[status]
	return ok
}

// IsTerminalStatus reports whether a status is terminal.
func IsTerminalStatus(status Status) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// CanTransition reports whether moving from one status to another preserves
// the run's forward-only ordering. Equal statuses are allowed so state-only
// updates can persist without a phase change.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

// SetFailed marks the run as failed with the given error message, clearing
// the heartbeat so the reclaimer ignores it.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.LastHeartbeat = nil
}
