// Package ingest turns source documents into embedded corpus chunks.
package ingest

import "strings"

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into overlapping chunks, preferring to break on
// paragraph boundaries, then lines, then words, then anywhere.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter creates a Splitter. Non-positive arguments fall back to
// 1000-character chunks with 150 characters of overlap.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 150
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split returns the chunks of text in document order. Whitespace-only
// chunks are dropped.
func (s *Splitter) Split(text string) []string {
	pieces := s.split(text, defaultSeparators)
	out := pieces[:0]
	for _, p := range pieces {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	sep := separators[len(separators)-1]
	rest := separators
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		parts = sliceByLength(text, s.ChunkSize)
	} else {
		parts = strings.Split(text, sep)
	}

	// Merge parts back together up to the chunk size; parts that are still
	// too long recurse with the finer separators.
	var chunks []string
	var current []string
	currentLen := 0
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, sep))
		current, currentLen = s.carryOverlap(current, sep)
	}

	for _, part := range parts {
		if len(part) > s.ChunkSize {
			flush()
			current, currentLen = nil, 0
			chunks = append(chunks, s.split(part, rest)...)
			continue
		}
		added := len(part)
		if len(current) > 0 {
			added += len(sep)
		}
		if currentLen+added > s.ChunkSize {
			flush()
		}
		// The carried overlap is best effort; drop it rather than blow
		// the chunk size.
		if len(current) > 0 && currentLen+len(sep)+len(part) > s.ChunkSize {
			current, currentLen = nil, 0
		}
		if len(current) > 0 {
			currentLen += len(sep)
		}
		current = append(current, part)
		currentLen += len(part)
	}
	flush()
	return chunks
}

// carryOverlap keeps the tail parts of the emitted chunk, up to the overlap
// budget, as the seed of the next chunk.
func (s *Splitter) carryOverlap(parts []string, sep string) ([]string, int) {
	if s.Overlap == 0 {
		return nil, 0
	}
	var kept []string
	total := 0
	for i := len(parts) - 1; i >= 0; i-- {
		added := len(parts[i])
		if len(kept) > 0 {
			added += len(sep)
		}
		if total+added > s.Overlap {
			break
		}
		kept = append([]string{parts[i]}, kept...)
		total += added
	}
	return kept, total
}

func sliceByLength(text string, size int) []string {
	var out []string
	for len(text) > size {
		out = append(out, text[:size])
		text = text[size:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
