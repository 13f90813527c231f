// Package statemachine provides the statekit integration for the ingest
// and query flows.
package statemachine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// Events understood by every flow machine.
const (
	EventNext statekit.EventType = "NEXT"
	EventFail statekit.EventType = "FAIL"
)

// Context carries flow state through the machine.
type Context struct {
	Flow  string
	Steps int
	Err   error
}

const (
	stateDone   statekit.StateID = statekit.StateID(domain.FlowDone)
	stateFailed statekit.StateID = statekit.StateID(domain.FlowFailed)
)

// NewFlowMachine creates a linear statechart over states, which must end
// in done. Every non-final state moves to the next on NEXT and to failed
// on FAIL.
func NewFlowMachine(name string, states []domain.FlowState) (*statekit.MachineConfig[*Context], error) {
	if len(states) < 2 || states[len(states)-1] != domain.FlowDone {
		return nil, fmt.Errorf("%w: flow %s must have a step and end in %s", domain.ErrInvalidInput, name, domain.FlowDone)
	}

	b := statekit.NewMachine[*Context](name).
		WithInitial(statekit.StateID(states[0])).
		WithContext(&Context{Flow: name}).
		WithAction("countStep", countStep).
		WithAction("recordFailure", recordFailure)

	for i, s := range states[:len(states)-1] {
		b = b.State(statekit.StateID(s)).
			On(EventNext).Target(statekit.StateID(states[i+1])).Do("countStep").
			On(EventFail).Target(stateFailed).Do("recordFailure").
			Done()
	}

	return b.
		State(stateDone).
			Final().
			Done().
		State(stateFailed).
			Final().
			Done().
		Build()
}

// NewIngestMachine creates the ingest statechart:
// reading, chunking, embedding, building, saving, then done or failed.
func NewIngestMachine() (*statekit.MachineConfig[*Context], error) {
	return NewFlowMachine("ingest", domain.IngestFlow)
}

// NewQueryMachine creates the query statechart:
// loading, embedding, searching, then done or failed.
func NewQueryMachine() (*statekit.MachineConfig[*Context], error) {
	return NewFlowMachine("query", domain.QueryFlow)
}

// countStep counts completed steps.
// In statekit, actions receive a pointer to the context, so **Context here.
func countStep(ctx **Context, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Steps++
}

// recordFailure keeps the error carried by a FAIL event.
func recordFailure(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if err, ok := event.Payload.(error); ok {
		(*ctx).Err = err
	}
}
