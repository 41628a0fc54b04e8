package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// defaultSeparators are tried in order: paragraph, line, sentence, word.
// Sentence and word boundaries cover both Latin punctuation and the
// Ethiopic full stop (።) and wordspace (፡) used in Amharic text. The
// empty separator is the hard character cut of last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", "። ", " ", "፡", ""}

// Splitter splits text into overlapping chunks, preferring natural
// boundaries over hard character cuts. Sizes are measured in bytes of the
// UTF-8 text, matching how the chunk budget is defined for the store.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a Splitter. overlap must be smaller than chunkSize.
func NewSplitter(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must be in [0, chunk size), got %d", overlap)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split splits text into chunks of at most the configured size, with
// consecutive chunks sharing up to overlap characters. Whitespace-only
// input yields no chunks. Splitting is deterministic: identical input
// always produces identical chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := s.split(text, s.separators)
	return s.merge(parts)
}

// split recursively breaks text into pieces no longer than chunkSize,
// trying each separator in order before falling back to a hard cut.
func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	rest := separators
	for i, cand := range separators {
		if cand == "" {
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardCut(text)
	}

	var parts []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > s.chunkSize {
			parts = append(parts, s.split(piece, rest)...)
		} else {
			parts = append(parts, piece)
		}
	}
	return parts
}

// hardCut slices text into chunkSize windows advancing by
// chunkSize-overlap. Cut points are backed off to rune starts so a
// multi-byte character is never split. Only reached when no separator
// exists in an over-long span.
func (s *Splitter) hardCut(text string) []string {
	step := s.chunkSize - s.overlap
	var out []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			// A single rune wider than the chunk budget; emit it whole.
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}
		out = append(out, text[start:end])

		next := start + step
		for next > start && next < len(text) && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start || next > end {
			next = end
		}
		start = next
	}
	return out
}

// merge greedily packs pieces into chunks up to chunkSize. Each new chunk
// is seeded with the tail of the previous one so consecutive chunks share
// an overlapping span.
func (s *Splitter) merge(parts []string) []string {
	var chunks []string
	var cur strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(cur.String())
		cur.Reset()
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		if cur.Len()+len(part) > s.chunkSize && cur.Len() > 0 {
			prev := cur.String()
			flush()

			// Seed the next chunk with the previous tail, shrinking the
			// seed if the incoming part would not fit beside it.
			seed := s.overlap
			if room := s.chunkSize - len(part); room < seed {
				seed = max(room, 0)
			}
			if seed > 0 && seed <= len(prev) {
				tail := prev[len(prev)-seed:]
				// Never start the seed mid-rune.
				for len(tail) > 0 && !utf8.RuneStart(tail[0]) {
					tail = tail[1:]
				}
				cur.WriteString(tail)
			}
		}
		cur.WriteString(part)
	}
	flush()

	return chunks
}
