package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// DefaultSeparators are tried coarsest first. The empty separator
// splits at character boundaries.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " ", ""}

// span is a byte range of the input together with its length in characters.
type span struct {
	start, end int
	chars      int
}

// Split cuts text into overlapping chunks of at most chunkSize characters
// using DefaultSeparators. Every chunk is a substring of text, and
// consecutive chunks overlap by at most chunkOverlap characters.
func Split(text string, chunkSize, chunkOverlap int) ([]string, error) {
	return SplitWith(text, chunkSize, chunkOverlap, DefaultSeparators)
}

// SplitWith is Split with a custom separator list. The list is always
// treated as ending with the empty separator.
func SplitWith(text string, chunkSize, chunkOverlap int, separators []string) ([]string, error) {
	if err := validate(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	if text == "" {
		return []string{}, nil
	}

	windows := splitSpans(text, chunkSize, chunkOverlap, separators)
	chunks := make([]string, len(windows))
	for i, w := range windows {
		chunks[i] = text[w.start:w.end]
	}
	return chunks, nil
}

func splitSpans(text string, chunkSize, chunkOverlap int, separators []string) []span {
	whole := span{0, len(text), utf8.RuneCountInString(text)}
	return merge(segment(text, whole, separators, chunkSize, nil), chunkSize, chunkOverlap)
}

func validate(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0,%d), got %d", domain.ErrInvalidInput, chunkSize, chunkOverlap)
	}
	return nil
}

// segment appends the elementary segments of s to out. A segment longer
// than size is split on the first separator it contains and its pieces
// recurse with the separators that follow.
func segment(text string, s span, separators []string, size int, out []span) []span {
	if s.chars <= size {
		return append(out, s)
	}

	for i, sep := range separators {
		if sep == "" {
			break
		}
		if !strings.Contains(text[s.start:s.end], sep) {
			continue
		}
		for _, piece := range splitKeep(text, s, sep) {
			out = segment(text, piece, separators[i+1:], size, out)
		}
		return out
	}

	return splitRunes(text, s, out)
}

// splitKeep splits s after every occurrence of sep, so the separator
// stays at the end of the preceding piece.
func splitKeep(text string, s span, sep string) []span {
	var pieces []span
	start := s.start
	for start < s.end {
		idx := strings.Index(text[start:s.end], sep)
		end := s.end
		if idx >= 0 {
			end = start + idx + len(sep)
		}
		pieces = append(pieces, span{start, end, utf8.RuneCountInString(text[start:end])})
		start = end
	}
	return pieces
}

// splitRunes emits one segment per character.
func splitRunes(text string, s span, out []span) []span {
	for i := s.start; i < s.end; {
		_, w := utf8.DecodeRuneInString(text[i:s.end])
		out = append(out, span{i, i + w, 1})
		i += w
	}
	return out
}

// merge packs contiguous segments greedily into windows of at most size
// characters. When a window is emitted, leading segments are dropped until
// what remains is at most overlap characters and leaves room for the next
// segment; the remainder starts the next window.
func merge(segments []span, size, overlap int) []span {
	var (
		windows []span
		current []span
		total   int
	)

	for _, seg := range segments {
		if total+seg.chars > size && len(current) > 0 {
			windows = append(windows, cover(current, total))
			for len(current) > 0 && (total > overlap || total+seg.chars > size) {
				total -= current[0].chars
				current = current[1:]
			}
		}
		current = append(current, seg)
		total += seg.chars
	}
	if len(current) > 0 {
		windows = append(windows, cover(current, total))
	}
	return windows
}

func cover(segs []span, chars int) span {
	return span{segs[0].start, segs[len(segs)-1].end, chars}
}
