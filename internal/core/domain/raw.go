package domain

import "strings"

// RawDocument is the knowledge-base source as read by a SourceReader.
// It is the input to the chunking pipeline.
type RawDocument struct {
	// URI is the original location (file path or storage URL).
	URI string

	// FileName is the base name of the source.
	FileName string

	// Content is the full text of the source.
	Content string
}

// IsBlank returns true if the document has no content other than whitespace.
func (r *RawDocument) IsBlank() bool {
	return r == nil || strings.TrimSpace(r.Content) == ""
}
