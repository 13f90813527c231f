package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentMetadata_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    DocumentMetadata
		wantErr bool
	}{
		{"first of one", DocumentMetadata{ChunkIndex: 0, TotalChunks: 1}, false},
		{"last of four", DocumentMetadata{ChunkIndex: 3, TotalChunks: 4}, false},
		{"zero total", DocumentMetadata{ChunkIndex: 0, TotalChunks: 0}, true},
		{"index past end", DocumentMetadata{ChunkIndex: 4, TotalChunks: 4}, true},
		{"negative index", DocumentMetadata{ChunkIndex: -1, TotalChunks: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRawDocument_IsBlank(t *testing.T) {
	var nilDoc *RawDocument
	assert.True(t, nilDoc.IsBlank())
	assert.True(t, (&RawDocument{Content: " \n\t "}).IsBlank())
	assert.False(t, (&RawDocument{Content: "Real estate"}).IsBlank())
}

func TestFlowState_IsTerminal(t *testing.T) {
	assert.True(t, FlowDone.IsTerminal())
	assert.True(t, FlowFailed.IsTerminal())
	assert.False(t, FlowEmbedding.IsTerminal())
	assert.False(t, FlowLoading.IsTerminal())
}
