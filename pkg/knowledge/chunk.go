package knowledge

import "strings"

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var separators = []string{"\n\n", "\n", " "}

// Chunk splits text into pieces of at most size runes, preferring paragraph,
// line and word boundaries. Consecutive chunks share up to overlap runes.
func Chunk(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		end = cutPoint(runes, start, end)
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// cutPoint moves end back to the last separator inside the window, if any.
func cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + len([]rune(window[:i])) + len([]rune(sep))
		}
	}
	return end
}
