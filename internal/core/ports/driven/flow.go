package driven

import "github.com/custodia-labs/kbase/internal/core/domain"

// FlowTracker observes one run of the ingest or query flow.
// A tracker is single-use.
type FlowTracker interface {
	// Advance moves the flow to its next state.
	Advance()

	// Fail moves the flow to the failed state, recording the reason.
	Fail(reason error)

	// State returns the current state.
	State() domain.FlowState
}

// FlowTrackerFactory creates trackers per flow run.
type FlowTrackerFactory interface {
	// NewIngestFlow starts a tracker in the reading state.
	NewIngestFlow() (FlowTracker, error)

	// NewQueryFlow starts a tracker in the loading state.
	NewQueryFlow() (FlowTracker, error)
}
