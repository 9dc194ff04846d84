package rope

import (
	"io"
	"strings"

	"github.com/dshills/collabcore/internal/sumtree"
)

// parallelExtendThreshold mirrors spec §4.1's "push_large ... above a
// parallel-extend threshold (~4x tree fan-out)".
const parallelExtendThreshold = sumtree.ParallelExtendThreshold

// Rope is an immutable, persistent text buffer over a sumtree of Chunks.
type Rope struct {
	tree sumtree.Tree[Chunk, TextSummary]
}

// New returns an empty rope.
func New() Rope {
	return Rope{tree: sumtree.New[Chunk, TextSummary]()}
}

// FromString builds a rope from s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return Rope{tree: sumtree.FromItems[Chunk, TextSummary](splitIntoChunks(s))}
}

// FromReader drains r into a rope, chunking as it goes.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Rope{}, err
		}
	}
	return b.Build(), nil
}

// Summary returns the rope's aggregated TextSummary.
func (r Rope) Summary() TextSummary { return r.tree.Summary() }

// Len returns the byte length of the rope.
func (r Rope) Len() ByteOffset { return ByteOffset(r.Summary().Len) }

// LenUTF16 returns the UTF-16 code unit length of the rope.
func (r Rope) LenUTF16() OffsetUTF16 { return OffsetUTF16(r.Summary().LenUTF16) }

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() uint32 { return r.Summary().Lines + 1 }

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool { return r.Len() == 0 }

// MaxPoint returns the Point one-past the last character.
func (r Rope) MaxPoint() Point { return pointDim(r.Summary()) }

// MaxPointUTF16 returns the PointUTF16 one-past the last character.
func (r Rope) MaxPointUTF16() PointUTF16 { return pointUTF16Dim(r.Summary()) }

// String materializes the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	for _, c := range r.tree.Items() {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Slice returns the text in the half-open byte range [start, end).
func (r Rope) Slice(start, end ByteOffset) Rope {
	if start >= end {
		return New()
	}
	if end > r.Len() {
		end = r.Len()
	}
	if start >= end {
		return New()
	}
	_, mid := r.splitAt(start)
	left, _ := mid.splitAt(end - start)
	return left
}

// Bytes returns the text in [start, end) as a string. Convenience
// wrapper around Slice for callers that don't need another Rope.
func (r Rope) Bytes(start, end ByteOffset) string {
	return r.Slice(start, end).String()
}

// splitAt splits the rope at a byte offset, returning two ropes whose
// concatenation reproduces r exactly. offset must already be clipped
// to a scalar boundary; use ClipOffset first if it might not be.
func (r Rope) splitAt(offset ByteOffset) (Rope, Rope) {
	if offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}

	cur := sumtree.NewCursor[Chunk, TextSummary, ByteOffset](r.tree, byteDim)
	prefix := cur.Slice(offset, sumtree.Right)
	chunk, ok := cur.Item()
	if !ok {
		return Rope{tree: prefix}, New()
	}
	chunkStart := ByteOffset(cur.SummaryBefore().Len)
	splitPoint := int(offset - chunkStart)
	left, right := chunk.Split(splitPoint)

	leftTree := prefix
	if !left.IsEmpty() {
		leftTree = sumtree.Concat(leftTree, sumtree.FromItems[Chunk, TextSummary]([]Chunk{left}))
	}
	rightTree := sumtree.New[Chunk, TextSummary]()
	if !right.IsEmpty() {
		rightTree = sumtree.FromItems[Chunk, TextSummary]([]Chunk{right})
	}
	cur.Next()
	rightTree = sumtree.Concat(rightTree, cur.Suffix())

	return Rope{tree: leftTree}, Rope{tree: rightTree}
}

// Concat appends other after r.
func (r Rope) Concat(other Rope) Rope {
	return Rope{tree: sumtree.Concat(r.tree, other.tree)}
}

// Append is an alias for Concat kept for parity with spec §4.1's
// "append, push, replace, slice" vocabulary; unlike Push it never
// attempts chunk-boundary coalescing of the seam.
func (r Rope) Append(other Rope) Rope { return r.Concat(other) }

// Push appends text, merging it into the rope's trailing chunk when
// doing so keeps that chunk within the occupancy bound, avoiding the
// proliferation of undersized chunks a naive append-many loop would
// otherwise produce.
func (r Rope) Push(text string) Rope {
	if len(text) == 0 {
		return r
	}
	merge := func(last, next Chunk) (Chunk, bool) {
		if last.Len()+next.Len() <= maxChunkSize {
			return NewChunk(last.String() + next.String()), true
		}
		return Chunk{}, false
	}
	tree := r.tree
	for _, c := range splitIntoChunks(text) {
		tree = sumtree.PushOrExtend(tree, c, merge)
	}
	return Rope{tree: tree}
}

// PushLarge behaves like Push but is the entry point spec §4.1 calls
// out for bulk inserts: at or above parallelExtendThreshold chunks it builds
// the incoming text's subtree with sumtree.ParExtend instead of chunk
// by chunk PushOrExtend calls.
func (r Rope) PushLarge(text string) Rope {
	chunks := splitIntoChunks(text)
	if len(chunks) < parallelExtendThreshold {
		return r.Push(text)
	}
	return r.Concat(Rope{tree: sumtree.ParExtend[Chunk, TextSummary](chunks)})
}

// Insert inserts text at a byte offset.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	left, right := r.splitAt(offset)
	return left.Push(text).Concat(right)
}

// Delete removes the half-open byte range [start, end).
func (r Rope) Delete(start, end ByteOffset) Rope {
	if start >= end {
		return r
	}
	left, rest := r.splitAt(start)
	if end > start {
		_, right := rest.splitAt(end - start)
		return left.Concat(right)
	}
	return left.Concat(rest)
}

// Replace replaces the half-open byte range [start, end) with text,
// implemented exactly as spec §4.1 prescribes:
// slice(0..start) ++ text ++ slice(end..len).
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	if start > end {
		start, end = end, start
	}
	prefix, rest := r.splitAt(start)
	span := end - start
	_, suffix := rest.splitAt(span)
	return prefix.Push(text).Concat(suffix)
}

// Equals reports whether two ropes contain the same text.
func (r Rope) Equals(other Rope) bool {
	return r.String() == other.String()
}

// ChunkCount reports the number of chunks, for tests and diagnostics.
func (r Rope) ChunkCount() int { return r.tree.Len() }
