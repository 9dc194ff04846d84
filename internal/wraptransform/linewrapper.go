package wraptransform

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

// MaxIndent bounds how much leading space a wrapped continuation line
// gets, matching the static display-text buffer described in spec
// §4.4's edge cases ("MAX_INDENT × ' '' sliced to 1+indent bytes").
const MaxIndent = 40

// wrapSearchBack is how far LineWrapper looks backward from a
// wrap-width overrun for a word boundary, grounded on the teacher's
// findWrapPoint 20-cell lookback.
const wrapSearchBack = 20

// Boundary is one soft-wrap break within a line: Ix is the byte offset
// within the line where the continuation row starts (always the start
// of a grapheme cluster), NextIndent is how many leading spaces
// the continuation row receives (the original line's own leading
// whitespace, clamped to MaxIndent).
type Boundary struct {
	Ix         uint32
	NextIndent uint32
}

// LineWrapper computes soft-wrap boundaries for a single display line
// against a wrap width measured in the same column unit the caller's
// font metrics collapse to (spec treats it as "logical pixels"; a
// monospace column count is the natural Go analogue and is what the
// teacher's LayoutEngine already uses).
type LineWrapper struct {
	wrapWidth uint32
}

// NewLineWrapper builds a wrapper for the given width. A width of 0
// means "no wrapping"; callers should special-case it before calling
// WrapLine (spec §4.4's edge case: None collapses to one isomorphic run).
func NewLineWrapper(wrapWidth uint32) *LineWrapper {
	return &LineWrapper{wrapWidth: wrapWidth}
}

// WrapWidth returns the configured width.
func (w *LineWrapper) WrapWidth() uint32 { return w.wrapWidth }

// WrapLine returns the boundaries at which line should break. Widths
// are measured in display columns; each boundary's Ix is the byte
// offset of a grapheme cluster's start (clusters via uniseg, so a wrap
// never lands inside a combining sequence or a wide rune).
func (w *LineWrapper) WrapLine(line string) []Boundary {
	if w.wrapWidth == 0 || len(line) == 0 {
		return nil
	}
	indent := leadingIndent(line)

	clusterStarts, clusterWidths := graphemeColumns(line)
	var total uint32
	for _, cw := range clusterWidths {
		total += cw
	}
	if total <= w.wrapWidth {
		return nil
	}

	var boundaries []Boundary
	col := uint32(0)
	lastBreak := 0 // index into clusterStarts of the start of the current row
	for i, cw := range clusterWidths {
		col += cw
		if col > w.wrapWidth {
			brk := w.findWrapPoint(line, clusterStarts, lastBreak, i)
			boundaries = append(boundaries, Boundary{Ix: uint32(clusterStarts[brk]), NextIndent: indent})
			lastBreak = brk
			col = 0
			for _, bw := range clusterWidths[brk : i+1] {
				col += bw
			}
		}
	}
	return boundaries
}

// findWrapPoint looks backward from the overrun index for a space to
// break on, falling back to a hard break at the overrun column
// exactly as the teacher's findWrapPoint does.
func (w *LineWrapper) findWrapPoint(line string, clusterStarts []int, rowStart, overrun int) int {
	searchEnd := overrun - wrapSearchBack
	if searchEnd < rowStart {
		searchEnd = rowStart
	}
	for i := overrun - 1; i > searchEnd; i-- {
		if line[clusterStarts[i]] == ' ' {
			return i + 1
		}
	}
	return overrun
}

func leadingIndent(line string) uint32 {
	indent := uint32(0)
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			break
		}
		indent++
	}
	if indent > MaxIndent {
		indent = MaxIndent
	}
	return indent
}

// graphemeColumns returns the byte offset and display-column width of
// each extended grapheme cluster in line, in display order. Width is
// measured by the East Asian Width of the cluster's leading rune
// (golang.org/x/text/width): Wide and Fullwidth clusters occupy two
// columns, everything else one, matching how a monospace terminal or
// editor gutter actually lays CJK text out.
func graphemeColumns(line string) (offsets []int, widths []uint32) {
	state := -1
	pos := 0
	for len(line[pos:]) > 0 {
		cluster, _, _, newState := uniseg.FirstGraphemeClusterInString(line[pos:], state)
		offsets = append(offsets, pos)
		widths = append(widths, clusterWidth(cluster))
		state = newState
		pos += len(cluster)
	}
	return offsets, widths
}

func clusterWidth(cluster string) uint32 {
	r, _ := utf8.DecodeRuneInString(cluster)
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// WrapDisplayText returns the synthetic text a wrap Transform emits:
// a newline followed by indent spaces, sliced from a shared static
// buffer the way spec §4.4 describes, so every wrap boundary at the
// same indent shares backing storage.
func WrapDisplayText(indent uint32) string {
	if indent > MaxIndent {
		indent = MaxIndent
	}
	return wrapBuffer[:1+indent]
}

var wrapBuffer = "\n" + string(make([]byte, MaxIndent, MaxIndent))

func init() {
	buf := []byte(wrapBuffer)
	for i := 1; i < len(buf); i++ {
		buf[i] = ' '
	}
	wrapBuffer = string(buf)
}
