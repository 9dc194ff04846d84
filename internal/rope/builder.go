package rope

import "github.com/dshills/collabcore/internal/sumtree"

// Builder accumulates text incrementally and produces a Rope in one
// pass, avoiding the O(n log n) cost of repeated Push calls when the
// caller already knows it's appending sequentially (spec §4.1's
// streaming construction path, used by FromReader).
type Builder struct {
	pending []byte
	chunks  []Chunk
}

// WriteString appends s to the builder, flushing completed chunks as
// pending data crosses the occupancy bound.
func (b *Builder) WriteString(s string) {
	b.pending = append(b.pending, s...)
	for len(b.pending) > maxChunkSize {
		split := findChunkBoundary(string(b.pending), targetChunkSize)
		if split <= 0 || split >= len(b.pending) {
			break
		}
		b.chunks = append(b.chunks, NewChunk(string(b.pending[:split])))
		b.pending = b.pending[split:]
	}
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// Build flushes any remaining bytes and returns the assembled Rope.
// The Builder is left usable for further writes, mirroring
// strings.Builder's behavior.
func (b *Builder) Build() Rope {
	chunks := b.chunks
	if len(b.pending) > 0 {
		chunks = append(append([]Chunk{}, chunks...), splitIntoChunks(string(b.pending))...)
	}
	if len(chunks) == 0 {
		return New()
	}
	if len(chunks) >= parallelExtendThreshold {
		return Rope{tree: sumtree.ParExtend[Chunk, TextSummary](chunks)}
	}
	return Rope{tree: sumtree.FromItems[Chunk, TextSummary](chunks)}
}
