package rope

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dshills/collabcore/internal/sumtree"
)

// locate seeks r's chunk tree by dimension D to target, returning the
// summary accumulated strictly before the matching chunk and the chunk
// itself. ok is false when target is beyond the tree's extent (the
// caller is expected to saturate to the corresponding maximum).
func locate[D sumtree.Dimension[D]](r Rope, proj func(TextSummary) D, target D) (before TextSummary, chunk Chunk, ok bool) {
	cur := sumtree.NewCursor[Chunk, TextSummary, D](r.tree, proj)
	cur.Seek(target, sumtree.Right)
	item, has := cur.Item()
	if !has {
		return r.tree.Summary(), Chunk{}, false
	}
	return cur.SummaryBefore(), item, true
}

// OffsetToPoint converts a byte offset to a (row, byte-column) point,
// saturating to MaxPoint beyond the end of the text (spec §4.1).
func (r Rope) OffsetToPoint(offset ByteOffset) Point {
	if offset >= r.Len() {
		return r.MaxPoint()
	}
	before, chunk, ok := locate(r, byteDim, offset)
	if !ok {
		return r.MaxPoint()
	}
	within := int(offset - ByteOffset(before.Len))
	row, col := before.Lines, before.LastLineLen
	text := chunk.String()
	for i := 0; i < within; {
		b := text[i]
		if b == '\n' {
			row++
			col = 0
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		col += uint32(size)
		i += size
	}
	return Point{Row: row, Column: col}
}

// PointToOffset converts a point to a byte offset, saturating a
// column that overruns its row to the row's end (spec §4.1 clipping).
func (r Rope) PointToOffset(p Point) ByteOffset {
	if p.Row >= r.Summary().Lines+1 {
		return r.Len()
	}
	before, chunk, ok := locate(r, pointDim, p)
	if !ok {
		return r.Len()
	}
	offset := ByteOffset(before.Len)
	row, col := before.Lines, before.LastLineLen
	text := chunk.String()
	for i := 0; i < len(text); {
		if row == p.Row && col >= p.Column {
			return offset
		}
		b := text[i]
		if b == '\n' {
			if row == p.Row {
				return offset // column overran the row; saturate to its end
			}
			row++
			col = 0
			i++
			offset++
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		col += uint32(size)
		i += size
		offset += ByteOffset(size)
	}
	return offset
}

// OffsetToOffsetUTF16 converts a byte offset to a UTF-16 code unit
// offset, saturating beyond the end of the text.
func (r Rope) OffsetToOffsetUTF16(offset ByteOffset) OffsetUTF16 {
	if offset >= r.Len() {
		return r.LenUTF16()
	}
	before, chunk, ok := locate(r, byteDim, offset)
	if !ok {
		return r.LenUTF16()
	}
	within := int(offset - ByteOffset(before.Len))
	u16 := OffsetUTF16(before.LenUTF16)
	text := chunk.String()
	for i := 0; i < within; {
		r, size := utf8.DecodeRuneInString(text[i:])
		u16 += OffsetUTF16(utf16.RuneLen(r))
		i += size
	}
	return u16
}

// OffsetUTF16ToOffset converts a UTF-16 code unit offset to a byte
// offset, saturating beyond the end of the text.
func (r Rope) OffsetUTF16ToOffset(u OffsetUTF16) ByteOffset {
	if u >= r.LenUTF16() {
		return r.Len()
	}
	before, chunk, ok := locate(r, utf16Dim, u)
	if !ok {
		return r.Len()
	}
	offset := ByteOffset(before.Len)
	u16 := OffsetUTF16(before.LenUTF16)
	text := chunk.String()
	for i := 0; i < len(text); {
		if u16 >= u {
			return offset
		}
		ch, size := utf8.DecodeRuneInString(text[i:])
		u16 += OffsetUTF16(utf16.RuneLen(ch))
		i += size
		offset += ByteOffset(size)
	}
	return offset
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 point.
func (r Rope) OffsetToPointUTF16(offset ByteOffset) PointUTF16 {
	if offset >= r.Len() {
		return r.MaxPointUTF16()
	}
	before, chunk, ok := locate(r, byteDim, offset)
	if !ok {
		return r.MaxPointUTF16()
	}
	within := int(offset - ByteOffset(before.Len))
	row, col := before.Lines, before.LastLineLenUTF16
	text := chunk.String()
	for i := 0; i < within; {
		b := text[i]
		if b == '\n' {
			row++
			col = 0
			i++
			continue
		}
		ch, size := utf8.DecodeRuneInString(text[i:])
		col += uint32(utf16.RuneLen(ch))
		i += size
	}
	return PointUTF16{Row: row, Column: col}
}

// PointUTF16ToOffset converts a UTF-16 point to a byte offset.
func (r Rope) PointUTF16ToOffset(p PointUTF16) ByteOffset {
	if p.Row >= r.Summary().Lines+1 {
		return r.Len()
	}
	before, chunk, ok := locate(r, pointUTF16Dim, p)
	if !ok {
		return r.Len()
	}
	offset := ByteOffset(before.Len)
	row, col := before.Lines, before.LastLineLenUTF16
	text := chunk.String()
	for i := 0; i < len(text); {
		if row == p.Row && col >= p.Column {
			return offset
		}
		b := text[i]
		if b == '\n' {
			if row == p.Row {
				return offset
			}
			row++
			col = 0
			i++
			offset++
			continue
		}
		ch, size := utf8.DecodeRuneInString(text[i:])
		col += uint32(utf16.RuneLen(ch))
		i += size
		offset += ByteOffset(size)
	}
	return offset
}

// PointToPointUTF16 converts a byte-column point to a UTF-16 point by
// routing through byte offset, which keeps the conversion correct for
// any scalar mix without a second bespoke scan.
func (r Rope) PointToPointUTF16(p Point) PointUTF16 {
	return r.OffsetToPointUTF16(r.PointToOffset(p))
}

// PointUTF16ToPoint converts a UTF-16 point to a byte-column point.
func (r Rope) PointUTF16ToPoint(p PointUTF16) Point {
	return r.OffsetToPoint(r.PointUTF16ToOffset(p))
}

// UnclippedPointUTF16ToPoint snaps a UTF-16 point that may not land on
// a valid surrogate-pair boundary (spec §4.1's "unclipped_point_utf16")
// to the nearest valid Point, by clamping the column against the row's
// actual UTF-16 length before converting.
func (r Rope) UnclippedPointUTF16ToPoint(p PointUTF16) Point {
	lineStart := r.PointUTF16ToOffset(PointUTF16{Row: p.Row, Column: 0})
	lineEnd := r.lineEndOffset(p.Row)
	lineLenUTF16 := uint32(r.OffsetToOffsetUTF16(lineEnd) - r.OffsetToOffsetUTF16(lineStart))
	if p.Column > lineLenUTF16 {
		p.Column = lineLenUTF16
	}
	pt := r.PointUTF16ToPoint(p)
	return r.ClipPointUTF16ToPoint(pt, p)
}

// ClipPointUTF16ToPoint nudges pt left if it fell in the middle of a
// surrogate pair while translating the unclipped UTF-16 column hint.
func (r Rope) ClipPointUTF16ToPoint(pt Point, hint PointUTF16) Point {
	back := r.PointToPointUTF16(pt)
	if back.Column > hint.Column && pt.Column > 0 {
		// Landed one UTF-16 unit past a surrogate pair's low half;
		// step back to the scalar's start.
		off := r.PointToOffset(pt)
		_, size := utf8.DecodeLastRuneInString(r.Bytes(0, off))
		return r.OffsetToPoint(off - ByteOffset(size))
	}
	return pt
}

func (r Rope) lineEndOffset(row uint32) ByteOffset {
	if row+1 >= r.LineCount() {
		return r.Len()
	}
	nextStart := r.PointToOffset(Point{Row: row + 1, Column: 0})
	if nextStart == 0 {
		return 0
	}
	return nextStart - 1
}
