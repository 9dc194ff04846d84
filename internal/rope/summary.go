package rope

import "unicode/utf16"

// TextSummary aggregates the metrics spec §3.1 assigns to ChunkSummary,
// flattened onto a single struct since nothing in this core needs the
// row/last-line-bytes pair to be a nested type.
type TextSummary struct {
	Len              ByteOffset  // UTF-8 byte count
	LenUTF16         OffsetUTF16 // UTF-16 code unit count
	Lines            uint32      // number of newline characters (row count - 1 within this span)
	FirstLineChars   uint32      // rune count of the first line
	LastLineChars    uint32      // rune count of the last (possibly only) line
	LastLineLen      uint32      // byte length of the last line
	LastLineLenUTF16 uint32      // UTF-16 length of the last line
	LongestRow       uint32      // row index (relative to this span) of the longest row
	LongestRowChars  uint32      // rune count of that row
}

// Summary implements sumtree.Item[TextSummary] trivially: a TextSummary
// summarizes itself.
func (s TextSummary) Summary() TextSummary { return s }

// ComputeSummary scans s once, computing every metric above. s must be
// valid UTF-8 and must not be split mid-scalar (a Chunk invariant).
func ComputeSummary(s string) TextSummary {
	var sum TextSummary
	lineChars := uint32(0)
	lineBytes := uint32(0)
	lineUTF16 := uint32(0)
	firstLineSet := false

	for _, r := range s {
		if r == '\n' {
			if !firstLineSet {
				sum.FirstLineChars = lineChars
				firstLineSet = true
			}
			if lineChars > sum.LongestRowChars {
				sum.LongestRowChars = lineChars
				sum.LongestRow = sum.Lines
			}
			sum.Lines++
			lineChars, lineBytes, lineUTF16 = 0, 0, 0
			continue
		}
		lineChars++
		lineBytes += uint32(runeLen(r))
		lineUTF16 += uint32(utf16.RuneLen(r))
	}

	if !firstLineSet {
		sum.FirstLineChars = lineChars
	}
	sum.LastLineChars = lineChars
	sum.LastLineLen = lineBytes
	sum.LastLineLenUTF16 = lineUTF16
	if lineChars > sum.LongestRowChars {
		sum.LongestRowChars = lineChars
		sum.LongestRow = sum.Lines
	}

	sum.Len = ByteOffset(len(s))
	u16 := 0
	for _, r := range s {
		u16 += utf16.RuneLen(r)
	}
	sum.LenUTF16 = OffsetUTF16(u16)
	return sum
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// Add combines two summaries. It is the one place the longest-row
// subtlety from spec §3.1 lives: the row formed by concatenating the
// left summary's last (partial) line with the right summary's first
// (partial) line may be longer than either side's own longest row, so
// it must be considered as a third candidate.
func (s TextSummary) Add(o TextSummary) TextSummary {
	if s.Len == 0 {
		return o
	}
	if o.Len == 0 {
		return s
	}

	joinedLineChars := s.LastLineChars + o.FirstLineChars

	longestChars := s.LongestRowChars
	longestRow := s.LongestRow
	if o.LongestRowChars > longestChars {
		longestChars = o.LongestRowChars
		longestRow = s.Lines + o.LongestRow
	}
	if joinedLineChars > longestChars {
		longestChars = joinedLineChars
		longestRow = s.Lines
	}

	firstLineChars := s.FirstLineChars
	if s.Lines == 0 {
		firstLineChars = joinedLineChars
	}

	lastLineChars := o.LastLineChars
	lastLineLen := o.LastLineLen
	lastLineLenUTF16 := o.LastLineLenUTF16
	if o.Lines == 0 {
		lastLineChars = joinedLineChars
		lastLineLen = s.LastLineLen + o.LastLineLen
		lastLineLenUTF16 = s.LastLineLenUTF16 + o.LastLineLenUTF16
	}

	return TextSummary{
		Len:              s.Len + o.Len,
		LenUTF16:         s.LenUTF16 + o.LenUTF16,
		Lines:            s.Lines + o.Lines,
		FirstLineChars:   firstLineChars,
		LastLineChars:    lastLineChars,
		LastLineLen:      lastLineLen,
		LastLineLenUTF16: lastLineLenUTF16,
		LongestRow:       longestRow,
		LongestRowChars:  longestChars,
	}
}
