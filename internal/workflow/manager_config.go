package workflow

import (
	"packwright/internal/run"
	"packwright/internal/stage"
)

// PhaseSet bundles the concrete phase handlers the manager orchestrates.
type PhaseSet struct {
	Classifier stage.Handler
	Archiver   stage.Handler
	Discoverer stage.Handler
	Analyzer   stage.Handler
	Author     stage.Handler
	Organizer  stage.Handler
	Deliverer  stage.Handler
}

type pipelinePhase struct {
	name             string
	handler          stage.Handler
	startStatus      run.Status
	processingStatus run.Status
	doneStatus       run.Status
}

// ConfigurePhases registers the concrete phase handlers the workflow will run.
//
// Suspended statuses never appear as a start status: a parked run is resumed
// only by an explicit decision, which moves it onto a start status this table
// does cover. A handler may set a status of its own during Execute (the
// classifier suspends already-packaged folders, the analyzer suspends for
// title selection); the manager advances to doneStatus only when the handler
// left the run in its processing status.
func (m *Manager) ConfigurePhases(set PhaseSet) {
	var phases []pipelinePhase

	if set.Classifier != nil {
		phases = append(phases, pipelinePhase{
			name:             "classifier",
			handler:          set.Classifier,
			startStatus:      run.StatusPending,
			processingStatus: run.StatusClassifying,
			doneStatus:       run.StatusClassified,
		})
	}
	if set.Archiver != nil {
		phases = append(phases, pipelinePhase{
			name:             "archiver",
			handler:          set.Archiver,
			startStatus:      run.StatusRepackageApproved,
			processingStatus: run.StatusArchiving,
			doneStatus:       run.StatusClassified,
		})
	}
	if set.Discoverer != nil {
		phases = append(phases, pipelinePhase{
			name:             "discoverer",
			handler:          set.Discoverer,
			startStatus:      run.StatusClassified,
			processingStatus: run.StatusDiscovering,
			doneStatus:       run.StatusDiscovered,
		})
	}
	if set.Analyzer != nil {
		phases = append(phases, pipelinePhase{
			name:             "analyzer",
			handler:          set.Analyzer,
			startStatus:      run.StatusDiscovered,
			processingStatus: run.StatusAnalyzing,
			doneStatus:       run.StatusAwaitingTitle,
		})
	}
	if set.Author != nil {
		phases = append(phases, pipelinePhase{
			name:             "author",
			handler:          set.Author,
			startStatus:      run.StatusTitleSelected,
			processingStatus: run.StatusAuthoring,
			doneStatus:       run.StatusAuthored,
		})
	}
	if set.Organizer != nil {
		phases = append(phases, pipelinePhase{
			name:             "organizer",
			handler:          set.Organizer,
			startStatus:      run.StatusAuthored,
			processingStatus: run.StatusOrganizing,
			doneStatus:       run.StatusOrganized,
		})
	}
	if set.Deliverer != nil {
		phases = append(phases, pipelinePhase{
			name:             "deliverer",
			handler:          set.Deliverer,
			startStatus:      run.StatusOrganized,
			processingStatus: run.StatusDelivering,
			doneStatus:       run.StatusCompleted,
		})
	}

	byStart := make(map[run.Status]pipelinePhase, len(phases))
	order := make([]run.Status, 0, len(phases))
	for _, phase := range phases {
		byStart[phase.startStatus] = phase
		order = append(order, phase.startStatus)
	}

	m.mu.Lock()
	m.phases = phases
	m.phaseByStart = byStart
	m.statusOrder = order
	m.mu.Unlock()
}

func (m *Manager) phaseForStatus(status run.Status) (pipelinePhase, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	phase, ok := m.phaseByStart[status]
	return phase, ok
}
