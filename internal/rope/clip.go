package rope

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// ClipOffset nudges a byte offset that falls mid-scalar to the nearest
// scalar boundary, per bias (spec §4.1). An offset already on a
// boundary is returned unchanged.
func (r Rope) ClipOffset(offset ByteOffset, bias Bias) ByteOffset {
	if offset >= r.Len() {
		return r.Len()
	}
	text := r.Bytes(0, r.Len())
	o := int(offset)
	if o < 0 {
		return 0
	}
	if o >= len(text) || utf8.RuneStart(text[o]) {
		return offset
	}
	if bias == Left {
		for o > 0 && !utf8.RuneStart(text[o]) {
			o--
		}
	} else {
		for o < len(text) && !utf8.RuneStart(text[o]) {
			o++
		}
	}
	return ByteOffset(o)
}

// ClipOffsetUTF16 nudges a UTF-16 offset that falls inside a surrogate
// pair to the nearest code point boundary, per bias.
func (r Rope) ClipOffsetUTF16(offset OffsetUTF16, bias Bias) OffsetUTF16 {
	if offset >= r.LenUTF16() {
		return r.LenUTF16()
	}
	byteOff := r.OffsetUTF16ToOffset(offset)
	backToU16 := r.OffsetToOffsetUTF16(byteOff)
	if backToU16 == offset {
		return offset
	}
	// offset landed between the two halves of a surrogate pair;
	// OffsetUTF16ToOffset rounds up, so byteOff is the end of that pair.
	if bias == Left {
		ch, _ := utf8.DecodeLastRuneInString(r.Bytes(0, byteOff))
		return backToU16 - OffsetUTF16(utf16.RuneLen(ch))
	}
	return backToU16
}

func runeAt(r Rope, offset ByteOffset) rune {
	if offset >= r.Len() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(r.Bytes(offset, r.Len()))
	return ch
}

// ClipPoint nudges a Point that falls in the interior of an extended
// grapheme cluster to the cluster's boundary, per bias (spec §4.1),
// using github.com/rivo/uniseg for Unicode segmentation.
func (r Rope) ClipPoint(p Point, bias Bias) Point {
	offset := r.PointToOffset(p)
	lineStart := r.PointToOffset(Point{Row: p.Row, Column: 0})
	lineEnd := r.lineEndOffset(p.Row)
	line := r.Bytes(lineStart, lineEnd)

	within := int(offset - lineStart)
	if within <= 0 || within >= len(line) {
		return p
	}

	state := -1
	pos := 0
	lastBoundary := 0
	for len(line[pos:]) > 0 {
		cluster, rest, _, newState := uniseg.FirstGraphemeClusterInString(line[pos:], state)
		state = newState
		clusterStart := pos
		clusterEnd := pos + len(cluster)
		if within == clusterStart {
			return p // already on a boundary
		}
		if within > clusterStart && within < clusterEnd {
			if bias == Left {
				return r.OffsetToPoint(lineStart + ByteOffset(clusterStart))
			}
			return r.OffsetToPoint(lineStart + ByteOffset(clusterEnd))
		}
		lastBoundary = clusterEnd
		pos = clusterEnd
		if len(rest) == 0 {
			break
		}
	}
	return r.OffsetToPoint(lineStart + ByteOffset(lastBoundary))
}

// ClipPointUTF16 clips a UTF-16 point the same way ClipPoint clips a
// byte-column Point, routing through the grapheme-aware byte clip.
func (r Rope) ClipPointUTF16(p PointUTF16, bias Bias) PointUTF16 {
	pt := r.PointUTF16ToPoint(p)
	clipped := r.ClipPoint(pt, bias)
	return r.PointToPointUTF16(clipped)
}
