package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/kbase/internal/core/domain"
	"github.com/custodia-labs/kbase/internal/core/ports/driven"
)

// --- Mock implementations ---

// vocabEmbedder embeds text as a bag of words: every distinct token gets
// its own dimension, so texts sharing words are similar.
type vocabEmbedder struct {
	dims int

	mu    sync.Mutex
	vocab map[string]int
	calls atomic.Int32
}

func newVocabEmbedder() *vocabEmbedder {
	return &vocabEmbedder{dims: 256, vocab: make(map[string]int)}
}

func (e *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	vec := make([]float32, e.dims)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		id, ok := e.vocab[tok]
		if !ok {
			id = len(e.vocab) % e.dims
			e.vocab[tok] = id
		}
		vec[id]++
	}
	return vec, nil
}

func (e *vocabEmbedder) Dimensions() int             { return e.dims }
func (e *vocabEmbedder) ModelName() string           { return "vocab-test" }
func (e *vocabEmbedder) Ping(_ context.Context) error { return nil }
func (e *vocabEmbedder) Close() error                { return nil }

// scriptedEmbedder answers "chunk-N" with the vector {N+1, 1} and lets
// tests inject delays, failures and bad vectors.
type scriptedEmbedder struct {
	delay   func(i int) time.Duration
	failOn  map[int]error
	vectors map[int][]float32

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	completed   atomic.Int32
	started     sync.Map // chunk index -> completed count when it started
	calls       atomic.Int32
}

func chunkTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk-%d", i)
	}
	return texts
}

func (e *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	var i int
	if _, err := fmt.Sscanf(text, "chunk-%d", &i); err != nil {
		return nil, fmt.Errorf("%w: unexpected text %q", domain.ErrProvider, text)
	}
	e.started.Store(i, int(e.completed.Load()))

	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		m := e.maxInFlight.Load()
		if n <= m || e.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if e.delay != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.delay(i)):
		}
	}
	defer e.completed.Add(1)

	if err, ok := e.failOn[i]; ok {
		return nil, err
	}
	if v, ok := e.vectors[i]; ok {
		return v, nil
	}
	return []float32{float32(i + 1), 1}, nil
}

func (e *scriptedEmbedder) Dimensions() int             { return 2 }
func (e *scriptedEmbedder) ModelName() string           { return "scripted" }
func (e *scriptedEmbedder) Ping(_ context.Context) error { return nil }
func (e *scriptedEmbedder) Close() error                { return nil }

// countingLimiter records Wait and RecordRateLimitError calls.
type countingLimiter struct {
	waits     atomic.Int32
	backoffs  atomic.Int32
	waitError error
}

func (l *countingLimiter) Wait(_ context.Context) error {
	l.waits.Add(1)
	return l.waitError
}

func (l *countingLimiter) RecordRateLimitError(_ int) {
	l.backoffs.Add(1)
}

// memSource serves documents from a map.
type memSource map[string]string

func (m memSource) Read(_ context.Context, uri string) (*domain.RawDocument, error) {
	content, ok := m[uri]
	if !ok {
		return nil, fmt.Errorf("%w: source %s", domain.ErrNotFound, uri)
	}
	return &domain.RawDocument{URI: uri, FileName: uri, Content: content}, nil
}

// recordingFlows hands out trackers that remember every state they enter.
type recordingFlows struct {
	mu      sync.Mutex
	history [][]domain.FlowState
	err     error
}

type recordingFlow struct {
	*sequenceFlow
	owner *recordingFlows
	run   int
}

func (f *recordingFlows) start(states []domain.FlowState) (driven.FlowTracker, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, []domain.FlowState{states[0]})
	return &recordingFlow{sequenceFlow: newSequenceFlow(states), owner: f, run: len(f.history) - 1}, nil
}

func (f *recordingFlows) NewIngestFlow() (driven.FlowTracker, error) { return f.start(domain.IngestFlow) }
func (f *recordingFlows) NewQueryFlow() (driven.FlowTracker, error)  { return f.start(domain.QueryFlow) }

func (f *recordingFlows) last() []domain.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.history) == 0 {
		return nil
	}
	return f.history[len(f.history)-1]
}

func (r *recordingFlow) record() {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()
	r.owner.history[r.run] = append(r.owner.history[r.run], r.State())
}

func (r *recordingFlow) Advance() {
	r.sequenceFlow.Advance()
	r.record()
}

func (r *recordingFlow) Fail(err error) {
	r.sequenceFlow.Fail(err)
	r.record()
}

var errEmbeddingDown = errors.New("connection refused")
