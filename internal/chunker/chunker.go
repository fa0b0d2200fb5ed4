// Package chunker splits extracted document text into overlapping,
// size-bounded segments. Split is pure and deterministic: the same text and
// parameters always yield the same chunk sequence.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

const (
	// DefaultMaxSize is the chunk size bound in characters.
	DefaultMaxSize = 1000
	// DefaultOverlap controls the word tail carried into the next chunk:
	// floor(overlap/5) words.
	DefaultOverlap = 200
)

// sentenceRe matches sentence-sized runs ending in terminal punctuation.
// Leading whitespace stays inside the following match, so concatenating the
// matches reconstructs the source text.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Split segments text and greedily packs the segments into chunks of at most
// maxSize characters. When a chunk closes, the next one is seeded with the
// last floor(overlap/5) words of the closed chunk for context continuity.
// Segments longer than maxSize are hard-split on the nearest newline or space
// before the cut point. Every returned chunk is non-empty after trimming.
func Split(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	segments, joiner := segment(text)
	if len(segments) == 0 {
		return nil
	}

	var chunks []string
	current := ""

	for _, seg := range segments {
		if len(seg) > maxSize {
			// Oversized segment: flush and hard-split it independently.
			if t := strings.TrimSpace(current); t != "" {
				chunks = append(chunks, t)
			}
			current = ""
			chunks = append(chunks, hardSplit(seg, maxSize)...)
			continue
		}

		switch {
		case current == "":
			current = seg
		case len(current)+len(joiner)+len(seg) > maxSize:
			closed := strings.TrimSpace(current)
			if closed != "" {
				chunks = append(chunks, closed)
			}
			current = seedNext(closed, seg, overlap)
		default:
			current += joiner + seg
		}
	}

	if t := strings.TrimSpace(current); t != "" {
		chunks = append(chunks, t)
	}
	return chunks
}

// segment cuts text into retrievable units and returns the joiner used when
// re-accumulating them. Spreadsheet extractions (carrying sheet markers) are
// split per row; prose is split on sentence-ending punctuation, falling back
// to the whole text when no boundary exists.
func segment(text string) ([]string, string) {
	if strings.Contains(text, domain.SheetMarker) {
		var rows []string
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) != "" {
				rows = append(rows, line)
			}
		}
		return rows, "\n"
	}

	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil, ""
		}
		return []string{text}, ""
	}
	return sentences, ""
}

// seedNext starts a chunk with the overlap tail of the closed chunk followed
// by the pending segment.
func seedNext(closed, pending string, overlap int) string {
	n := overlap / 5
	if n == 0 || closed == "" {
		return pending
	}
	words := strings.Fields(closed)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ") + " " + pending
}

// hardSplit cuts an oversized segment into maxSize-bounded pieces, preferring
// the nearest newline or space at or before each cut point. A cut lands
// exactly at maxSize only when no boundary exists past the midpoint, and then
// it is backed up to a rune start so no character is ever torn in half.
func hardSplit(seg string, maxSize int) []string {
	var pieces []string
	rest := seg

	for len(rest) > maxSize {
		cut := maxSize
		if b := strings.LastIndexAny(rest[:maxSize+1], " \n"); b >= maxSize/2 {
			cut = b
		} else {
			for cut > 0 && !utf8.RuneStart(rest[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxSize
			}
		}

		if piece := strings.TrimSpace(rest[:cut]); piece != "" {
			pieces = append(pieces, piece)
		}
		rest = strings.TrimLeft(rest[cut:], " \n")
	}

	if piece := strings.TrimSpace(rest); piece != "" {
		pieces = append(pieces, piece)
	}
	return pieces
}
