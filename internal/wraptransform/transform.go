package wraptransform

// LineExtent is the rune-counted equivalent of rope.TextSummary's
// line-tracking fields, reused here for two independent lanes (the
// text a Transform consumes and the text it produces) rather than
// one, since a display Transform's input and output diverge.
type LineExtent struct {
	Rows            uint32
	FirstLineChars  uint32
	LastLineChars   uint32
	LongestRow      uint32
	LongestRowChars uint32
}

// computeLineExtent scans s once, the same way rope.ComputeSummary
// does for bytes, but counting runes and tracking only line shape.
func computeLineExtent(s string) LineExtent {
	var e LineExtent
	lineChars := uint32(0)
	firstSet := false
	for _, r := range s {
		if r == '\n' {
			if !firstSet {
				e.FirstLineChars = lineChars
				firstSet = true
			}
			if lineChars > e.LongestRowChars {
				e.LongestRowChars = lineChars
				e.LongestRow = e.Rows
			}
			e.Rows++
			lineChars = 0
			continue
		}
		lineChars++
	}
	if !firstSet {
		e.FirstLineChars = lineChars
	}
	e.LastLineChars = lineChars
	if lineChars > e.LongestRowChars {
		e.LongestRowChars = lineChars
		e.LongestRow = e.Rows
	}
	return e
}

// Add composes two LineExtents, carrying over rope.TextSummary.Add's
// longest-row-across-the-join subtlety (spec §3.1, reused verbatim
// here since the same join arithmetic applies to any line-shaped
// monoid, not just byte-indexed text).
func (e LineExtent) Add(o LineExtent) LineExtent {
	if e.Rows == 0 && e.LastLineChars == 0 && e.FirstLineChars == 0 {
		return o
	}
	if o.Rows == 0 && o.LastLineChars == 0 && o.FirstLineChars == 0 {
		return e
	}

	joined := e.LastLineChars + o.FirstLineChars

	longest := e.LongestRowChars
	longestRow := e.LongestRow
	if o.LongestRowChars > longest {
		longest = o.LongestRowChars
		longestRow = e.Rows + o.LongestRow
	}
	if joined > longest {
		longest = joined
		longestRow = e.Rows
	}

	first := e.FirstLineChars
	if e.Rows == 0 {
		first = joined
	}
	last := o.LastLineChars
	if o.Rows == 0 {
		last = joined
	}

	return LineExtent{
		Rows:            e.Rows + o.Rows,
		FirstLineChars:  first,
		LastLineChars:   last,
		LongestRow:      longestRow,
		LongestRowChars: longest,
	}
}

// TransformSummary implements sumtree.Summable: Input tracks the
// TabPoint span a Transform consumes, Output the WrapPoint span it
// produces. The two lanes compose independently.
type TransformSummary struct {
	Input  LineExtent
	Output LineExtent
}

// Add implements sumtree.Summable.
func (s TransformSummary) Add(o TransformSummary) TransformSummary {
	return TransformSummary{Input: s.Input.Add(o.Input), Output: s.Output.Add(o.Output)}
}

// Transform is either isomorphic (Display == false: Input text passes
// through to Output unchanged) or a display transform (Display ==
// true: consumes nothing, emits a synthetic soft-wrap break), per
// spec §3.3.
type Transform struct {
	Display     bool
	DisplayText string
	input       TransformSummary
}

// NewIsomorphicTransform builds a pass-through Transform from a slice
// of tab-expanded text.
func NewIsomorphicTransform(text string) Transform {
	extent := computeLineExtent(text)
	return Transform{input: TransformSummary{Input: extent, Output: extent}}
}

// NewDisplayTransform builds a synthetic wrap-break Transform whose
// output is a newline plus indent spaces and whose input is empty.
func NewDisplayTransform(indent uint32) Transform {
	text := WrapDisplayText(indent)
	return Transform{
		Display:     true,
		DisplayText: text,
		input:       TransformSummary{Output: computeLineExtent(text)},
	}
}

// Summary implements sumtree.Item[TransformSummary].
func (t Transform) Summary() TransformSummary { return t.input }

func inputDim(s TransformSummary) WrapPoint {
	return WrapPoint{Row: s.Input.Rows, Column: s.Input.LastLineChars}
}

func outputDim(s TransformSummary) WrapPoint {
	return WrapPoint{Row: s.Output.Rows, Column: s.Output.LastLineChars}
}
