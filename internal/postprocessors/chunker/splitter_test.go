package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

// knowledgeBase builds a 3,400 character document of 34 paragraphs,
// each 100 characters including its blank-line separator.
func knowledgeBase() string {
	var b strings.Builder
	for i := 0; i < 34; i++ {
		b.WriteString(strings.Repeat(fmt.Sprintf("topic%02d ", i), 12))
		b.WriteString("ok\n\n")
	}
	return b.String()
}

func TestSplit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	text := "Buying a house starts with a mortgage pre-approval."
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("expected the whole text as one chunk, got %q", chunks)
	}
}

func TestSplit_KnowledgeBaseScenario(t *testing.T) {
	text := knowledgeBase()
	if n := utf8.RuneCountInString(text); n != 3400 {
		t.Fatalf("fixture should be 3400 characters, got %d", n)
	}

	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 4 || len(chunks) > 5 {
		t.Fatalf("expected 4 or 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 1000 {
			t.Errorf("chunk %d has %d characters", i, n)
		}
	}
	if !strings.Contains(chunks[2], "topic20") {
		t.Errorf("expected chunk 2 to contain paragraph 20")
	}
}

func TestSplitSpans_CoverAndOrder(t *testing.T) {
	inputs := map[string]string{
		"paragraphs":    knowledgeBase(),
		"sentences":     strings.Repeat("Prices rose. Inventory fell! Is it a buyer's market? ", 40),
		"no separators": strings.Repeat("x", 777),
		"unicode":       strings.Repeat("Maison à vendre près du marché ", 50),
	}

	for name, text := range inputs {
		t.Run(name, func(t *testing.T) {
			spans := splitSpans(text, 120, 30, DefaultSeparators)
			if len(spans) == 0 {
				t.Fatal("expected chunks")
			}
			if spans[0].start != 0 {
				t.Errorf("first chunk starts at %d", spans[0].start)
			}
			if last := spans[len(spans)-1]; last.end != len(text) {
				t.Errorf("last chunk ends at %d, want %d", last.end, len(text))
			}
			for i := 1; i < len(spans); i++ {
				prev, cur := spans[i-1], spans[i]
				if cur.start <= prev.start {
					t.Errorf("chunk %d does not advance: %d <= %d", i, cur.start, prev.start)
				}
				if cur.start > prev.end {
					t.Errorf("gap between chunk %d and %d", i-1, i)
				}
			}
		})
	}
}

func TestSplitSpans_OverlapBound(t *testing.T) {
	text := strings.Repeat("The mortgage process has several steps. ", 60)
	spans := splitSpans(text, 200, 50, DefaultSeparators)

	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.start >= prev.end {
			continue
		}
		shared := utf8.RuneCountInString(text[cur.start:prev.end])
		if shared > 50 {
			t.Errorf("chunks %d and %d share %d characters", i-1, i, shared)
		}
	}
}

func TestSplit_OverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks, err := Split(text, 50, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(chunks); i++ {
		if !strings.HasPrefix(chunks[i], "word") {
			t.Errorf("chunk %d should start on a word boundary: %q", i, chunks[i])
		}
	}
	if len(chunks) < 2 || !strings.HasSuffix(chunks[0], chunks[1][:10]) {
		t.Errorf("expected chunk 1 to repeat the tail of chunk 0")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := knowledgeBase()
	a, _ := Split(text, 300, 60)
	b, _ := Split(text, 300, 60)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_CharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 25)
	chunks, err := Split(text, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if utf8.RuneCountInString(chunks[0]) != 10 {
		t.Errorf("expected 10 characters, got %d", utf8.RuneCountInString(chunks[0]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks without overlap should concatenate to the input")
	}
}

func TestSplitKeep_SeparatorStaysWithPreceding(t *testing.T) {
	text := "one\n\ntwo\n\nthree"
	pieces := splitKeep(text, span{0, len(text), utf8.RuneCountInString(text)}, "\n\n")
	got := make([]string, len(pieces))
	for i, p := range pieces {
		got[i] = text[p.start:p.end]
	}
	want := []string{"one\n\n", "two\n\n", "three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}
