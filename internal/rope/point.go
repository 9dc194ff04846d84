package rope

// ByteOffset is an absolute byte position within a Rope.
type ByteOffset uint64

// Cmp implements sumtree.Dimension.
func (o ByteOffset) Cmp(other ByteOffset) int {
	switch {
	case o < other:
		return -1
	case o > other:
		return 1
	default:
		return 0
	}
}

// OffsetUTF16 is an absolute position measured in UTF-16 code units,
// the coordinate system the Language Server Protocol uses.
type OffsetUTF16 uint64

// Cmp implements sumtree.Dimension.
func (o OffsetUTF16) Cmp(other OffsetUTF16) int {
	switch {
	case o < other:
		return -1
	case o > other:
		return 1
	default:
		return 0
	}
}

// Point is a (row, byte-column) position. Both fields are 0-indexed.
type Point struct {
	Row    uint32
	Column uint32
}

// Cmp implements sumtree.Dimension.
func (p Point) Cmp(other Point) int {
	if p.Row != other.Row {
		if p.Row < other.Row {
			return -1
		}
		return 1
	}
	switch {
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	default:
		return 0
	}
}

// PointUTF16 is a (row, UTF-16-column) position.
type PointUTF16 struct {
	Row    uint32
	Column uint32
}

// Cmp implements sumtree.Dimension.
func (p PointUTF16) Cmp(other PointUTF16) int {
	if p.Row != other.Row {
		if p.Row < other.Row {
			return -1
		}
		return 1
	}
	switch {
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	default:
		return 0
	}
}

func byteDim(s TextSummary) ByteOffset     { return ByteOffset(s.Len) }
func utf16Dim(s TextSummary) OffsetUTF16   { return OffsetUTF16(s.LenUTF16) }
func pointDim(s TextSummary) Point         { return Point{Row: s.Lines, Column: s.LastLineLen} }
func pointUTF16Dim(s TextSummary) PointUTF16 {
	return PointUTF16{Row: s.Lines, Column: s.LastLineLenUTF16}
}
