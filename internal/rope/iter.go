package rope

import "io"

// ChunksInRange returns the chunks overlapping [start, end), each
// trimmed to the requested range's boundary on its first/last element.
// Mirrors spec §4.1's chunks_in_range.
func (r Rope) ChunksInRange(start, end ByteOffset) []Chunk {
	return r.Slice(start, end).tree.Items()
}

// ReversedChunksInRange is ChunksInRange with element order reversed,
// for callers walking text backward (e.g. word-boundary search).
func (r Rope) ReversedChunksInRange(start, end ByteOffset) []Chunk {
	chunks := r.ChunksInRange(start, end)
	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	return chunks
}

// BytesInRange returns an io.Reader over [start, end) that never
// materializes more than one chunk at a time.
func (r Rope) BytesInRange(start, end ByteOffset) io.Reader {
	return &chunkReader{chunks: r.ChunksInRange(start, end)}
}

type chunkReader struct {
	chunks []Chunk
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	for len(cr.chunks) > 0 && cr.chunks[0].IsEmpty() {
		cr.chunks = cr.chunks[1:]
	}
	if len(cr.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, cr.chunks[0].data)
	cr.chunks[0].data = cr.chunks[0].data[n:]
	if cr.chunks[0].IsEmpty() {
		cr.chunks = cr.chunks[1:]
	}
	return n, nil
}

// ReversedBytesInRange reads [start, end) back to front, one chunk's
// worth at a time, each chunk's bytes still delivered forward.
func (r Rope) ReversedBytesInRange(start, end ByteOffset) io.Reader {
	return &chunkReader{chunks: r.ReversedChunksInRange(start, end)}
}

// Chars returns the runes in [start, end).
func (r Rope) Chars(start, end ByteOffset) []rune {
	text := r.Bytes(start, end)
	return []rune(text)
}

// ReversedChars returns the runes in [start, end) in reverse order.
func (r Rope) ReversedChars(start, end ByteOffset) []rune {
	chars := r.Chars(start, end)
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	return chars
}

// Lines returns each line's text (without its trailing newline) for
// rows [startRow, endRow).
func (r Rope) Lines(startRow, endRow uint32) []string {
	if endRow > r.LineCount() {
		endRow = r.LineCount()
	}
	lines := make([]string, 0, int(endRow)-int(startRow))
	for row := startRow; row < endRow; row++ {
		start := r.PointToOffset(Point{Row: row, Column: 0})
		end := r.lineEndOffset(row)
		lines = append(lines, r.Bytes(start, end))
	}
	return lines
}
