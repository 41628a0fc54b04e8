package ingest

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewSplitter_Validation(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{name: "valid", chunkSize: 2000, overlap: 200, wantErr: false},
		{name: "zero overlap", chunkSize: 100, overlap: 0, wantErr: false},
		{name: "zero chunk size", chunkSize: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", chunkSize: 100, overlap: -1, wantErr: true},
		{name: "overlap equals chunk size", chunkSize: 100, overlap: 100, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.chunkSize, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSplitter(%d, %d) error = %v, wantErr %v", tt.chunkSize, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestSplitter_EmptyInput(t *testing.T) {
	s, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if got := s.Split(input); len(got) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", input, len(got))
		}
	}
}

func TestSplitter_ShortInput(t *testing.T) {
	s, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	got := s.Split("The renewal fee is 50 birr.")
	if len(got) != 1 {
		t.Fatalf("Split() = %d chunks, want 1", len(got))
	}
	if got[0] != "The renewal fee is 50 birr." {
		t.Errorf("Split() = %q, want input unchanged", got[0])
	}
}

// TestSplitter_LongDocument covers the sizing contract: ~6000 characters of
// sentence text must yield at least 3 chunks, each at most 2000 characters,
// with consecutive chunks sharing an overlapping span of at most 200.
func TestSplitter_LongDocument(t *testing.T) {
	s, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	var sb strings.Builder
	for i := 0; sb.Len() < 6000; i++ {
		fmt.Fprintf(&sb, "This is sentence %04d. ", i)
	}
	text := sb.String()

	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("Split() = %d chunks, want >= 3", len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk) > ChunkSize {
			t.Errorf("chunk %d has %d characters, want <= %d", i, len(chunk), ChunkSize)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}

	for i := 0; i+1 < len(chunks); i++ {
		shared := sharedSpan(chunks[i], chunks[i+1])
		if shared == 0 {
			t.Errorf("chunks %d and %d share no overlapping span", i, i+1)
		}
		if shared > ChunkOverlap {
			t.Errorf("chunks %d and %d share %d characters, want <= %d", i, i+1, shared, ChunkOverlap)
		}
	}
}

// sharedSpan returns the length of the longest suffix of a that is a
// prefix of b, capped at ChunkOverlap.
func sharedSpan(a, b string) int {
	maxK := min(len(a), len(b))
	maxK = min(maxK, ChunkOverlap)
	for k := maxK; k > 0; k-- {
		if a[len(a)-k:] == b[:k] {
			return k
		}
	}
	return 0
}

func TestSplitter_Deterministic(t *testing.T) {
	s, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "Paragraph %d explains one procedure in detail.\n\n", i)
	}
	text := sb.String()

	first := s.Split(text)
	second := s.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("Split() is not deterministic for identical input")
	}
}

func TestSplitter_PrefersParagraphBoundaries(t *testing.T) {
	s, err := NewSplitter(100, 10)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	chunks := s.Split(para1 + "\n\n" + para2)

	if len(chunks) != 2 {
		t.Fatalf("Split() = %d chunks, want 2 (split at paragraph boundary)", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "a") || strings.Contains(chunks[0], "b") {
		t.Errorf("chunk 0 = %q, want only first paragraph", chunks[0])
	}
	if !strings.HasSuffix(chunks[1], "b") {
		t.Errorf("chunk 1 = %q, want second paragraph", chunks[1])
	}
}

// TestSplitter_HardCutPreservesUTF8 covers separator-free Amharic input:
// hard cuts must land on rune boundaries, never inside a multi-byte
// character.
func TestSplitter_HardCutPreservesUTF8(t *testing.T) {
	s, err := NewSplitter(ChunkSize, ChunkOverlap)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	// 9000 bytes of three-byte Ethiopic runes with no separators at all.
	text := strings.Repeat("አለም", 1000)
	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("Split() = %d chunks, want >= 3", len(chunks))
	}

	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d contains invalid UTF-8", i)
		}
		if len(chunk) > ChunkSize {
			t.Errorf("chunk %d has %d bytes, want <= %d", i, len(chunk), ChunkSize)
		}
	}
}

func TestSplitter_EthiopicSentenceBoundaries(t *testing.T) {
	s, err := NewSplitter(100, 10)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	sentence := strings.Repeat("ሀ", 30) + "። "
	chunks := s.Split(strings.Repeat(sentence, 3))

	if len(chunks) != 3 {
		t.Fatalf("Split() = %d chunks, want 3 (one per sentence)", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d contains invalid UTF-8", i)
		}
		if !strings.HasSuffix(chunk, "።") {
			t.Errorf("chunk %d = %q, want sentence-final ።", i, chunk)
		}
	}
}

func TestSplitter_HardCutWithoutSeparators(t *testing.T) {
	s, err := NewSplitter(100, 10)
	if err != nil {
		t.Fatalf("NewSplitter() error = %v", err)
	}

	chunks := s.Split(strings.Repeat("x", 250))
	if len(chunks) < 2 {
		t.Fatalf("Split() = %d chunks, want >= 2", len(chunks))
	}
	total := 0
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d has %d characters, want <= 100", i, len(chunk))
		}
		total += len(chunk)
	}
	// Overlap duplicates characters, so the total must cover the input.
	if total < 250 {
		t.Errorf("chunks cover %d characters, want >= 250", total)
	}
}
