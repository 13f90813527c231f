package statemachine

import (
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
	"github.com/custodia-labs/kbase/internal/logger"
)

// Ensure the types implement the interfaces.
var (
	_ driven.FlowTracker        = (*Tracker)(nil)
	_ driven.FlowTrackerFactory = (*Factory)(nil)
)

// Tracker drives one run of a flow machine.
type Tracker struct {
	mu     sync.Mutex
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewTracker starts a fresh interpreter for machine.
func NewTracker(machine *statekit.MachineConfig[*Context], flow string) *Tracker {
	ctx := &Context{Flow: flow}
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()
	logger.Transition(flow, "", string(interp.State().Value))
	return &Tracker{interp: interp, ctx: ctx}
}

// Advance moves to the next state. Terminal states ignore it.
func (t *Tracker) Advance() {
	t.send(statekit.Event{Type: EventNext})
}

// Fail moves to the failed state. Terminal states ignore it.
func (t *Tracker) Fail(reason error) {
	t.send(statekit.Event{Type: EventFail, Payload: reason})
}

// State returns the current state.
func (t *Tracker) State() domain.FlowState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.FlowState(t.interp.State().Value)
}

// Err returns the reason given to Fail, if any.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx.Err
}

// Steps returns the number of completed steps.
func (t *Tracker) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx.Steps
}

func (t *Tracker) send(event statekit.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interp.Done() {
		return
	}
	from := t.interp.State().Value
	t.interp.Send(event)
	to := t.interp.State().Value
	if from != to {
		logger.Transition(t.ctx.Flow, string(from), string(to))
	}
	if t.interp.Done() {
		t.interp.Stop()
	}
}

// Factory creates trackers for the ingest and query machines.
// Machines are built once and shared by every tracker.
type Factory struct {
	ingest *statekit.MachineConfig[*Context]
	query  *statekit.MachineConfig[*Context]
}

// NewFactory builds both flow machines.
func NewFactory() (*Factory, error) {
	ingest, err := NewIngestMachine()
	if err != nil {
		return nil, err
	}
	query, err := NewQueryMachine()
	if err != nil {
		return nil, err
	}
	return &Factory{ingest: ingest, query: query}, nil
}

// NewIngestFlow starts a tracker in the reading state.
func (f *Factory) NewIngestFlow() (driven.FlowTracker, error) {
	return NewTracker(f.ingest, "ingest"), nil
}

// NewQueryFlow starts a tracker in the loading state.
func (f *Factory) NewQueryFlow() (driven.FlowTracker, error) {
	return NewTracker(f.query, "query"), nil
}
