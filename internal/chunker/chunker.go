package chunker

// Chunker splits raw text into contiguous, overlapping fixed-size windows.
// Splitting is rune-based so multi-byte characters never break apart.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. Invalid configuration is normalized:
// size must be positive, overlap must satisfy 0 <= overlap < size.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split returns the overlapping windows of text. Each window holds at most
// size runes, each successive window starts size-overlap runes after the
// previous one, and the final window may be shorter. Empty input yields nil.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)

	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
