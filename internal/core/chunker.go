// ABOUTME: Chunker splits corpus text into overlapping, line-aligned windows
// ABOUTME: Sizes are measured in characters; newlines are not counted
package core

import (
	"strings"
	"unicode/utf8"
)

// ChunkText splits text into ordered chunks of roughly chunkSize characters.
//
// Blank lines are dropped. A new chunk is started when the next line would push
// the running size past chunkSize; it is seeded with the longest run of trailing
// lines from the previous chunk whose combined length is <= overlap. A single
// line longer than chunkSize is kept whole. chunkSize and overlap must be
// positive; the output is a pure function of the three arguments.
func ChunkText(text string, chunkSize, overlap int) []string {
	var chunks []string
	var current []string
	currentSize := 0

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineSize := utf8.RuneCountInString(line)

		if currentSize+lineSize > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))

			carried := overlapSuffix(current, overlap)
			current = append(carried, line)
			currentSize = linesSize(current)
			continue
		}

		current = append(current, line)
		currentSize += lineSize
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// overlapSuffix returns a fresh slice holding the trailing lines of prev whose
// summed length stays within overlap, in original order.
func overlapSuffix(prev []string, overlap int) []string {
	size := 0
	start := len(prev)
	for i := len(prev) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(prev[i])
		if size+n > overlap {
			break
		}
		size += n
		start = i
	}

	carried := make([]string, 0, len(prev)-start+1)
	return append(carried, prev[start:]...)
}

func linesSize(lines []string) int {
	total := 0
	for _, l := range lines {
		total += utf8.RuneCountInString(l)
	}
	return total
}
