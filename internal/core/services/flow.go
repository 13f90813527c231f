package services

import (
	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// sequenceFlow is the tracker used when no FlowTrackerFactory is set.
type sequenceFlow struct {
	states []domain.FlowState
	pos    int
	failed bool
}

func newSequenceFlow(states []domain.FlowState) *sequenceFlow {
	return &sequenceFlow{states: states}
}

func (f *sequenceFlow) Advance() {
	if !f.failed && f.pos < len(f.states)-1 {
		f.pos++
	}
}

func (f *sequenceFlow) Fail(error) {
	f.failed = true
}

func (f *sequenceFlow) State() domain.FlowState {
	if f.failed {
		return domain.FlowFailed
	}
	return f.states[f.pos]
}

var _ driven.FlowTracker = (*sequenceFlow)(nil)
