package rope

import "unicode/utf8"

// CHUNK_BASE governs chunk granularity per spec §3.1: every non-terminal
// chunk has length in [CHUNK_BASE, 2*CHUNK_BASE], except it may run down
// to CHUNK_BASE-3 to accommodate a multibyte scalar straddling a natural
// split point. The teacher used 128/256 for its MinChunkSize/MaxChunkSize
// pair; CHUNK_BASE is that same value generalized.
const (
	ChunkBase = 128

	minChunkSize    = ChunkBase - 3
	maxChunkSize    = 2 * ChunkBase
	targetChunkSize = (minChunkSize + maxChunkSize) / 2
)

// Chunk is a bounded, immutable UTF-8 fragment stored at a rope leaf.
// It never splits a scalar value.
type Chunk struct {
	data    string
	summary TextSummary
}

// NewChunk wraps s, eagerly computing its summary.
func NewChunk(s string) Chunk {
	return Chunk{data: s, summary: ComputeSummary(s)}
}

// Summary implements sumtree.Item[TextSummary].
func (c Chunk) Summary() TextSummary { return c.summary }

// String returns the chunk's text.
func (c Chunk) String() string { return c.data }

// Len returns the chunk's byte length.
func (c Chunk) Len() int { return len(c.data) }

// IsEmpty reports whether the chunk is empty.
func (c Chunk) IsEmpty() bool { return len(c.data) == 0 }

// Split splits the chunk at the given byte offset, which must land on a
// UTF-8 scalar boundary.
func (c Chunk) Split(offset int) (Chunk, Chunk) {
	if offset <= 0 {
		return Chunk{}, c
	}
	if offset >= len(c.data) {
		return c, Chunk{}
	}
	return NewChunk(c.data[:offset]), NewChunk(c.data[offset:])
}

// splitIntoChunks partitions s into chunks respecting the occupancy
// invariant, preferring to split right after a newline for locality of
// line-oriented scans.
func splitIntoChunks(s string) []Chunk {
	if len(s) == 0 {
		return nil
	}
	if len(s) <= maxChunkSize {
		return []Chunk{NewChunk(s)}
	}

	var chunks []Chunk
	remaining := s
	for len(remaining) > 0 {
		if len(remaining) <= maxChunkSize {
			chunks = append(chunks, NewChunk(remaining))
			break
		}
		split := findChunkBoundary(remaining, targetChunkSize)
		chunks = append(chunks, NewChunk(remaining[:split]))
		remaining = remaining[split:]
	}
	return chunks
}

// findChunkBoundary finds a UTF-8-safe split point near target,
// preferring the byte right after a nearby newline.
func findChunkBoundary(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}
	if target <= 0 {
		return 0
	}

	searchStart := target - minChunkSize/4
	if searchStart < 0 {
		searchStart = 0
	}
	searchEnd := target + minChunkSize/4
	if searchEnd > len(s) {
		searchEnd = len(s)
	}

	for i := target; i < searchEnd; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= searchStart; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	pos := target
	for pos < len(s) && !utf8.RuneStart(s[pos]) {
		pos++
	}
	if pos > target+utf8.UTFMax || pos >= len(s) {
		pos = target
		for pos > 0 && !utf8.RuneStart(s[pos]) {
			pos--
		}
	}
	return pos
}
