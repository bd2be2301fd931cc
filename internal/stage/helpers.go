package stage

import (
	"packwright/internal/run"
	"packwright/internal/services"
)

// LoadState decodes a run's state blob, returning a validation error suitable
// for handler Prepare/Execute methods when the blob is corrupt.
func LoadState(r *run.Run) (run.State, error) {
	state, err := r.State()
	if err != nil {
		return run.State{}, services.Wrap(
			services.ErrValidation, "stage", "load state",
			"run state missing or invalid; the run cannot resume", err)
	}
	return state, nil
}

// RequireDiscovery returns the discovery result or a validation error when a
// later phase runs before discovery recorded its output.
func RequireDiscovery(state run.State) (*run.Discovery, error) {
	if state.Discovery == nil || state.Discovery.GuestName == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "require discovery",
			"discovery output missing; rerun from preflight", nil)
	}
	return state.Discovery, nil
}
