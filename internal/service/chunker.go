package service

// chunkText splits text into contiguous substrings of at most maxChunkSize
// characters, preserving order and content: concatenating the chunks in order
// reproduces text exactly. Boundaries are purely positional.
func chunkText(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || len(text) <= maxChunkSize {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= maxChunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/maxChunkSize+1)
	for start := 0; start < len(runes); start += maxChunkSize {
		end := start + maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
