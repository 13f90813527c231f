package statemachine

import (
	"errors"
	"testing"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

func TestNewIngestMachine(t *testing.T) {
	t.Parallel()

	machine, err := NewIngestMachine()
	if err != nil {
		t.Fatalf("NewIngestMachine() error = %v", err)
	}
	if machine == nil {
		t.Fatal("NewIngestMachine() returned nil machine")
	}
}

func TestNewFlowMachine_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		states []domain.FlowState
	}{
		{"empty", nil},
		{"only done", []domain.FlowState{domain.FlowDone}},
		{"no done", []domain.FlowState{domain.FlowReading, domain.FlowChunking}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewFlowMachine("bad", tt.states); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("NewFlowMachine() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestTracker_IngestHappyPath(t *testing.T) {
	t.Parallel()

	f, err := NewFactory()
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	tracker, err := f.NewIngestFlow()
	if err != nil {
		t.Fatalf("NewIngestFlow() error = %v", err)
	}

	for i, want := range domain.IngestFlow {
		if got := tracker.State(); got != want {
			t.Fatalf("step %d: State() = %s, want %s", i, got, want)
		}
		tracker.Advance()
	}

	// Done is final.
	if got := tracker.State(); got != domain.FlowDone {
		t.Errorf("State() after done = %s, want done", got)
	}
	tracker.Fail(errors.New("too late"))
	if got := tracker.State(); got != domain.FlowDone {
		t.Errorf("Fail() after done moved to %s", got)
	}
	if steps := tracker.(*Tracker).Steps(); steps != len(domain.IngestFlow)-1 {
		t.Errorf("Steps() = %d, want %d", steps, len(domain.IngestFlow)-1)
	}
}

func TestTracker_QueryFailure(t *testing.T) {
	t.Parallel()

	f, err := NewFactory()
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	flow, _ := f.NewQueryFlow()
	tracker := flow.(*Tracker)

	if got := tracker.State(); got != domain.FlowLoading {
		t.Fatalf("initial State() = %s, want loading", got)
	}
	tracker.Advance()
	if got := tracker.State(); got != domain.FlowEmbedding {
		t.Fatalf("State() = %s, want embedding", got)
	}

	reason := errors.New("provider down")
	tracker.Fail(reason)
	if got := tracker.State(); got != domain.FlowFailed {
		t.Fatalf("State() = %s, want failed", got)
	}
	if !errors.Is(tracker.Err(), reason) {
		t.Errorf("Err() = %v, want %v", tracker.Err(), reason)
	}

	tracker.Advance()
	if got := tracker.State(); got != domain.FlowFailed {
		t.Errorf("Advance() after failure moved to %s", got)
	}
}

func TestTracker_Independent(t *testing.T) {
	t.Parallel()

	f, err := NewFactory()
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	a, _ := f.NewIngestFlow()
	b, _ := f.NewIngestFlow()

	a.Advance()
	a.Advance()
	if got := b.State(); got != domain.FlowReading {
		t.Errorf("second tracker State() = %s, want reading", got)
	}
	if got := a.State(); got != domain.FlowEmbedding {
		t.Errorf("first tracker State() = %s, want embedding", got)
	}
}
