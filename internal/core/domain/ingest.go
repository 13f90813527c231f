package domain

import "time"

// IngestRequest describes one full rebuild of the knowledge base.
// Zero values fall back to the configured defaults.
type IngestRequest struct {
	SourcePath   string
	ChunkSize    int
	ChunkOverlap int
	ArtifactPath string
}

// IngestResult reports the outcome of an ingest.
type IngestResult struct {
	Success      bool
	ChunkCount   int
	ArtifactPath string
	Error        string
	Duration     time.Duration
}

// FlowState is a named state of the ingest or query flow.
type FlowState string

// Ingest flow states.
const (
	FlowReading   FlowState = "reading"
	FlowChunking  FlowState = "chunking"
	FlowEmbedding FlowState = "embedding"
	FlowBuilding  FlowState = "building"
	FlowSaving    FlowState = "saving"
)

// Query flow states.
const (
	FlowLoading   FlowState = "loading"
	FlowSearching FlowState = "searching"
)

// Terminal states shared by both flows.
const (
	FlowDone   FlowState = "done"
	FlowFailed FlowState = "failed"
)

// IsTerminal returns true for done and failed.
func (s FlowState) IsTerminal() bool {
	return s == FlowDone || s == FlowFailed
}

// IngestFlow lists the ingest states in order, ending in done.
var IngestFlow = []FlowState{FlowReading, FlowChunking, FlowEmbedding, FlowBuilding, FlowSaving, FlowDone}

// QueryFlow lists the query states in order, ending in done.
var QueryFlow = []FlowState{FlowLoading, FlowEmbedding, FlowSearching, FlowDone}
