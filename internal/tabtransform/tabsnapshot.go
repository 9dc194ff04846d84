package tabtransform

import (
	"strings"

	"github.com/dshills/collabcore/internal/rope"
)

// DefaultTabWidth matches the teacher's layout.DefaultTabExpander.
const DefaultTabWidth = 4

// TabSummary is TabPoint's equivalent of rope.TextSummary: metrics
// over tab-expanded display columns rather than raw bytes.
type TabSummary struct {
	Rows            uint32
	FirstLineChars  uint32
	LastLineChars   uint32
	LongestRow      uint32
	LongestRowChars uint32
}

// TabSnapshot is an immutable view of a rope with hard tabs expanded
// to spaces, per spec §4.3's minimal transform contract.
type TabSnapshot struct {
	src      rope.Rope
	tabWidth uint32
	version  uint64
}

// New builds a TabSnapshot over r with the given tab width (stops at
// DefaultTabWidth if width is zero) at version 0.
func New(r rope.Rope, tabWidth uint32) TabSnapshot {
	if tabWidth == 0 {
		tabWidth = DefaultTabWidth
	}
	return TabSnapshot{src: r, tabWidth: tabWidth}
}

// Version returns the snapshot's edit generation.
func (s TabSnapshot) Version() uint64 { return s.version }

// TabWidth returns the configured expansion width.
func (s TabSnapshot) TabWidth() uint32 { return s.tabWidth }

// Rope returns the underlying source rope, for callers (Wrap) that
// need to stream the pre-expansion text too.
func (s TabSnapshot) Rope() rope.Rope { return s.src }

func (s TabSnapshot) nextTabStop(col uint32) uint32 {
	w := s.tabWidth
	return col + w - (col % w)
}

func (s TabSnapshot) lineText(row uint32) string {
	lines := s.src.Lines(row, row+1)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// expandLine returns row's text with tabs expanded and the resulting
// tab-column width.
func (s TabSnapshot) expandLine(row uint32) (string, uint32) {
	line := s.lineText(row)
	var sb strings.Builder
	sb.Grow(len(line))
	col := uint32(0)
	for _, r := range line {
		if r == '\t' {
			next := s.nextTabStop(col)
			for ; col < next; col++ {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String(), col
}

// FromPoint converts a source rope.Point into this snapshot's
// TabPoint coordinate space.
func (s TabSnapshot) FromPoint(p rope.Point) TabPoint {
	line := s.lineText(p.Row)
	col := uint32(0)
	byteCol := uint32(0)
	for _, r := range line {
		if byteCol >= p.Column {
			break
		}
		if r == '\t' {
			col = s.nextTabStop(col)
		} else {
			col++
		}
		byteCol += uint32(len(string(r)))
	}
	return TabPoint{Row: p.Row, Column: col}
}

// ToPoint converts a TabPoint back to the nearest source rope.Point,
// clipping a column that lands inside a tab's expansion to the tab's
// own byte position (spec's to_point).
func (s TabSnapshot) ToPoint(tp TabPoint) rope.Point {
	line := s.lineText(tp.Row)
	col := uint32(0)
	byteCol := uint32(0)
	for _, r := range line {
		if col >= tp.Column {
			return rope.Point{Row: tp.Row, Column: byteCol}
		}
		if r == '\t' {
			next := s.nextTabStop(col)
			if next > tp.Column {
				return rope.Point{Row: tp.Row, Column: byteCol}
			}
			col = next
		} else {
			col++
		}
		byteCol += uint32(len(string(r)))
	}
	return rope.Point{Row: tp.Row, Column: byteCol}
}

// ToFoldPoint is an alias of ToPoint: this core treats folds as a
// black-box input ahead of Tab, so there is no separate fold
// coordinate space to translate through here.
func (s TabSnapshot) ToFoldPoint(tp TabPoint) rope.Point { return s.ToPoint(tp) }

// MaxPoint returns the TabPoint one-past the last expanded character.
func (s TabSnapshot) MaxPoint() TabPoint {
	return s.FromPoint(s.src.MaxPoint())
}

// Text returns the full tab-expanded text. Use sparingly on large ropes.
func (s TabSnapshot) Text() string {
	var sb strings.Builder
	rows := s.src.LineCount()
	for row := uint32(0); row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		expanded, _ := s.expandLine(row)
		sb.WriteString(expanded)
	}
	return sb.String()
}

// TextSummaryForRange computes the TabSummary of the expanded text in
// [r.Start, r.End).
func (s TabSnapshot) TextSummaryForRange(r Range[TabPoint]) TabSummary {
	var sum TabSummary
	if r.End.Row < r.Start.Row {
		return sum
	}
	sum.Rows = r.End.Row - r.Start.Row
	longest := uint32(0)
	longestRow := uint32(0)
	for row := r.Start.Row; row <= r.End.Row; row++ {
		_, width := s.expandLine(row)
		lo, hi := uint32(0), width
		if row == r.Start.Row {
			lo = r.Start.Column
		}
		if row == r.End.Row {
			hi = r.End.Column
		}
		if hi < lo {
			hi = lo
		}
		chars := hi - lo
		if row == r.Start.Row {
			sum.FirstLineChars = chars
		}
		if row == r.End.Row {
			sum.LastLineChars = chars
		}
		if chars > longest {
			longest = chars
			longestRow = row - r.Start.Row
		}
	}
	sum.LongestRowChars = longest
	sum.LongestRow = longestRow
	return sum
}

// Chunks returns the expanded display text for each row in
// [r.Start.Row, r.End.Row], trimmed to the requested columns on the
// first and last row.
func (s TabSnapshot) Chunks(r Range[TabPoint]) []string {
	if r.End.Row < r.Start.Row {
		return nil
	}
	out := make([]string, 0, r.End.Row-r.Start.Row+1)
	for row := r.Start.Row; row <= r.End.Row; row++ {
		text, width := s.expandLine(row)
		lo, hi := uint32(0), width
		if row == r.Start.Row {
			lo = r.Start.Column
		}
		if row == r.End.Row {
			hi = r.End.Column
		}
		if hi > width {
			hi = width
		}
		if lo > hi {
			lo = hi
		}
		runes := []rune(text)
		if int(hi) > len(runes) {
			hi = uint32(len(runes))
		}
		out = append(out, string(runes[lo:hi]))
	}
	return out
}

// RopeEdit describes an edit against the source rope in Point
// coordinates, the shape Sync consumes to project tab-space edits.
type RopeEdit struct {
	Old Range[rope.Point]
	New Range[rope.Point]
}

// Sync advances a TabSnapshot to reflect newRope, translating each
// source edit into tab-point coordinates (spec §4.3's consumer
// contract: Wrap drives its own sync off these TabEdits).
func Sync(old TabSnapshot, newRope rope.Rope, edits []RopeEdit) (TabSnapshot, []TabEdit) {
	next := TabSnapshot{src: newRope, tabWidth: old.tabWidth, version: old.version + 1}
	tabEdits := make([]TabEdit, 0, len(edits))
	for _, e := range edits {
		tabEdits = append(tabEdits, TabEdit{
			Old: Range[TabPoint]{Start: old.FromPoint(e.Old.Start), End: old.FromPoint(e.Old.End)},
			New: Range[TabPoint]{Start: next.FromPoint(e.New.Start), End: next.FromPoint(e.New.End)},
		})
	}
	return next, tabEdits
}
