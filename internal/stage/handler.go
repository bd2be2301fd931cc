package stage

import (
	"context"

	"packwright/internal/run"
)

// Handler describes the contract the workflow manager needs from each phase.
type Handler interface {
	Prepare(context.Context, *run.Run) error
	Execute(context.Context, *run.Run) error
	HealthCheck(context.Context) Health
}
