package wraptransform

import (
	"sort"
	"strings"

	"github.com/dshills/collabcore/internal/sumtree"
	"github.com/dshills/collabcore/internal/tabtransform"
)

type transformTree = sumtree.Tree[Transform, TransformSummary]

// WrapSnapshot is an immutable sum-tree of Transforms over a
// TabSnapshot, per spec §3.3/§4.4.
type WrapSnapshot struct {
	tree         transformTree
	tabVersion   uint64
	wrapWidth    uint32
	hasWidth     bool
	interpolated bool
}

// WrapWidth reports the configured wrap width and whether one is set.
func (s WrapSnapshot) WrapWidth() (uint32, bool) { return s.wrapWidth, s.hasWidth }

// Interpolated reports whether this snapshot's content is correct but
// its wrap breaks may be stale (spec §3.3's `interpolated` flag).
func (s WrapSnapshot) Interpolated() bool { return s.interpolated }

// TabVersion reports the TabSnapshot version this wrap snapshot was
// built from.
func (s WrapSnapshot) TabVersion() uint64 { return s.tabVersion }

// MaxPoint returns the WrapPoint one-past the last output character.
func (s WrapSnapshot) MaxPoint() WrapPoint {
	return outputDim(s.tree.Summary())
}

// LongestRow returns the wrap row with the most columns and its
// column count, derived from summary composition rather than a scan
// (spec §4.4's "updated by summary composition, not per-row scan").
func (s WrapSnapshot) LongestRow() (row, chars uint32) {
	sum := s.tree.Summary()
	return sum.Output.LongestRow, sum.Output.LongestRowChars
}

// Text materializes the full wrapped display text by streaming every
// transform against tab, the snapshot this WrapSnapshot was derived
// from. A bare WrapSnapshot retains only transform shape, not
// characters, so rendering always needs the backing tab snapshot.
func (s WrapSnapshot) Text(tab tabtransform.TabSnapshot) string {
	max := s.MaxPoint()
	return strings.Join(s.Chunks(tab, RowRange{Start: 0, End: max.Row + 1}), "")
}

// BuildFull constructs a WrapSnapshot from scratch: if wrapWidth is
// absent the whole tab snapshot collapses into a single isomorphic
// transform (spec §4.4 edge case); otherwise every row is wrapped.
func BuildFull(tab tabtransform.TabSnapshot, wrapWidth uint32, hasWidth bool) WrapSnapshot {
	var tree transformTree
	if !hasWidth {
		tree = sumtree.FromItems[Transform, TransformSummary]([]Transform{
			NewIsomorphicTransform(tab.Text()),
		})
	} else {
		max := tab.MaxPoint()
		tree = buildRows(tab, wrapWidth, 0, max.Row+1)
	}
	return WrapSnapshot{tree: tree, tabVersion: tab.Version(), wrapWidth: wrapWidth, hasWidth: hasWidth}
}

// buildRows wraps rows [startRow, endRowExclusive) of tab, producing
// the Transforms that cover exactly that row range (spec §4.4 step
// 2's per-line wrap-boundary pass, "yield after each line" realized
// here as a plain loop since this core has no cooperative scheduler
// primitive below the WrapMap's own goroutine boundary).
func buildRows(tab tabtransform.TabSnapshot, wrapWidth uint32, startRow, endRowExclusive uint32) transformTree {
	wrapper := NewLineWrapper(wrapWidth)
	var items []Transform
	maxRow := tab.MaxPoint().Row
	for row := startRow; row < endRowExclusive; row++ {
		lineRange := tabtransform.Range[tabtransform.TabPoint]{
			Start: tabtransform.TabPoint{Row: row, Column: 0},
			End:   tabtransform.TabPoint{Row: row, Column: ^uint32(0)},
		}
		chunks := tab.Chunks(lineRange)
		line := ""
		if len(chunks) > 0 {
			line = chunks[0]
		}
		boundaries := wrapper.WrapLine(line)
		if row < maxRow {
			line += "\n"
		}

		if len(boundaries) == 0 {
			items = append(items, NewIsomorphicTransform(line))
			continue
		}
		prev := 0
		for _, b := range boundaries {
			ix := int(b.Ix)
			if ix > len(line) {
				ix = len(line)
			}
			items = append(items, NewIsomorphicTransform(line[prev:ix]))
			items = append(items, NewDisplayTransform(b.NextIndent))
			prev = ix
		}
		items = append(items, NewIsomorphicTransform(line[prev:]))
	}
	if len(items) == 0 {
		return sumtree.New[Transform, TransformSummary]()
	}
	return sumtree.FromItems[Transform, TransformSummary](items)
}

// Interpolate applies edits.New spans verbatim as isomorphic runs in
// place of whatever they replaced, marking the result interpolated
// (spec §4.4 algorithm 1). Complexity is O((|edits|+overlap)·log N).
func Interpolate(old WrapSnapshot, tab tabtransform.TabSnapshot, edits []tabtransform.TabEdit) WrapSnapshot {
	sorted := append([]tabtransform.TabEdit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Old.Start.Cmp(sorted[j].Old.Start) < 0
	})

	cur := sumtree.NewCursor[Transform, TransformSummary, WrapPoint](old.tree, inputDim)
	result := sumtree.New[Transform, TransformSummary]()

	for _, e := range sorted {
		prefix := cur.Slice(toWrapPoint(e.Old.Start), sumtree.Right)
		result = sumtree.Concat(result, prefix)

		newText := joinChunks(tab.Chunks(tabtransform.Range[tabtransform.TabPoint]{Start: e.New.Start, End: e.New.End}))
		if len(newText) > 0 {
			result = sumtree.Concat(result, sumtree.FromItems[Transform, TransformSummary]([]Transform{
				NewIsomorphicTransform(newText),
			}))
		}

		cur.Seek(toWrapPoint(e.Old.End), sumtree.Right)
	}
	result = sumtree.Concat(result, cur.Suffix())

	return WrapSnapshot{tree: result, tabVersion: tab.Version(), wrapWidth: old.wrapWidth, hasWidth: old.hasWidth, interpolated: true}
}

func toWrapPoint(p tabtransform.TabPoint) WrapPoint {
	return WrapPoint{Row: p.Row, Column: p.Column}
}

func joinChunks(chunks []string) string {
	return strings.Join(chunks, "\n")
}

// RowEdit is a coalesced run of wrapped rows to rebuild, spec §4.4
// algorithm 2's row-coalescing step.
type RowEdit struct {
	OldRows RowRange
	NewRows RowRange
}

// CoalesceRowEdits merges TabEdits into row intervals, merging
// adjacent/overlapping ones (spec: "adjacent row-edits merge").
func CoalesceRowEdits(edits []tabtransform.TabEdit) []RowEdit {
	if len(edits) == 0 {
		return nil
	}
	rows := make([]RowEdit, len(edits))
	for i, e := range edits {
		rows[i] = RowEdit{
			OldRows: RowRange{Start: e.Old.Start.Row, End: e.Old.End.Row + 1},
			NewRows: RowRange{Start: e.New.Start.Row, End: e.New.End.Row + 1},
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OldRows.Start < rows[j].OldRows.Start })

	merged := []RowEdit{rows[0]}
	for _, r := range rows[1:] {
		last := &merged[len(merged)-1]
		if r.OldRows.Start <= last.OldRows.End {
			if r.OldRows.End > last.OldRows.End {
				last.OldRows.End = r.OldRows.End
			}
			if r.NewRows.End > last.NewRows.End {
				last.NewRows.End = r.NewRows.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// Rewrap recomputes the Transform tree exactly for the rows named by
// rowEdits against the new tab snapshot, splicing the preserved
// prefix/suffix of old in around each rebuilt span (spec §4.4
// algorithm 2). The returned snapshot has interpolated == false.
func Rewrap(old WrapSnapshot, tab tabtransform.TabSnapshot, rowEdits []RowEdit) WrapSnapshot {
	if !old.hasWidth {
		return BuildFull(tab, old.wrapWidth, false)
	}

	cur := sumtree.NewCursor[Transform, TransformSummary, WrapPoint](old.tree, inputDim)
	result := sumtree.New[Transform, TransformSummary]()
	consumedOldRow := uint32(0)

	for _, re := range rowEdits {
		prefix := cur.Slice(WrapPoint{Row: re.OldRows.Start, Column: 0}, sumtree.Right)
		result = sumtree.Concat(result, prefix)

		rebuilt := buildRows(tab, old.wrapWidth, re.NewRows.Start, re.NewRows.End)
		result = sumtree.Concat(result, rebuilt)

		cur.Seek(WrapPoint{Row: re.OldRows.End, Column: 0}, sumtree.Right)
		consumedOldRow = re.OldRows.End
	}
	_ = consumedOldRow
	result = sumtree.Concat(result, cur.Suffix())

	return WrapSnapshot{tree: result, tabVersion: tab.Version(), wrapWidth: old.wrapWidth, hasWidth: old.hasWidth}
}

// ComputeEdits projects TabEdit row intervals through old and new
// snapshots' Input→Output mapping to produce WrapEdits, merging
// consecutive overlapping results (spec §4.4 algorithm 3).
func ComputeEdits(old, new_ WrapSnapshot, tabEdits []tabtransform.TabEdit) []WrapEdit {
	if len(tabEdits) == 0 {
		return nil
	}
	out := make([]WrapEdit, 0, len(tabEdits))
	for _, e := range tabEdits {
		oldStart := projectInputToOutput(old, toWrapPoint(e.Old.Start))
		oldEnd := projectInputToOutput(old, toWrapPoint(e.Old.End))
		newStart := projectInputToOutput(new_, toWrapPoint(e.New.Start))
		newEnd := projectInputToOutput(new_, toWrapPoint(e.New.End))
		out = append(out, WrapEdit{
			Old: RowRange{Start: oldStart.Row, End: oldEnd.Row + 1},
			New: RowRange{Start: newStart.Row, End: newEnd.Row + 1},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Old.Start < out[j].Old.Start })
	merged := []WrapEdit{out[0]}
	for _, e := range out[1:] {
		last := &merged[len(merged)-1]
		if e.Old.Start <= last.Old.End {
			if e.Old.End > last.Old.End {
				last.Old.End = e.Old.End
			}
			if e.New.End > last.New.End {
				last.New.End = e.New.End
			}
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

func projectInputToOutput(s WrapSnapshot, input WrapPoint) WrapPoint {
	cur := sumtree.NewCursor[Transform, TransformSummary, WrapPoint](s.tree, inputDim)
	cur.Seek(input, sumtree.Right)
	return outputDim(cur.SummaryBefore())
}

// Chunks iterates the transform tree across [rows.Start, rows.End),
// emitting synthetic wrap text for display transforms and the
// corresponding tab-snapshot chunk for isomorphic ones (spec §4.4
// algorithm 4). tab must be the snapshot this WrapSnapshot was built
// from (or a version-compatible successor). Each transform that
// overlaps the row range is emitted whole: one that begins before
// rows.Start or runs past rows.End contributes all of its text, so the
// result is not trimmed to the range.
func (s WrapSnapshot) Chunks(tab tabtransform.TabSnapshot, rows RowRange) []string {
	cur := sumtree.NewCursor[Transform, TransformSummary, WrapPoint](s.tree, outputDim)
	cur.Seek(WrapPoint{Row: rows.Start, Column: 0}, sumtree.Right)

	var out []string
	inputBefore := toTabPoint(inputDim(cur.SummaryBefore()))
	for {
		item, ok := cur.Item()
		if !ok || outputDim(cur.SummaryBefore()).Row >= rows.End {
			break
		}
		if item.Display {
			out = append(out, item.DisplayText)
		} else {
			inputAfter := toTabPoint(inputDim(cur.SummaryAfter()))
			out = append(out, joinChunks(tab.Chunks(tabtransform.Range[tabtransform.TabPoint]{Start: inputBefore, End: inputAfter})))
			inputBefore = inputAfter
		}
		if !cur.Next() {
			break
		}
	}
	return out
}

func toTabPoint(p WrapPoint) tabtransform.TabPoint {
	return tabtransform.TabPoint{Row: p.Row, Column: p.Column}
}

// BufferRows reports, for each wrap row starting at startRow up to
// the snapshot's last row, the buffer (tab-snapshot) row it begins
// at, or nil for a soft-wrapped continuation row (spec §4.4 algorithm
// 4's buffer_rows).
func (s WrapSnapshot) BufferRows(startRow uint32) []*uint32 {
	max := s.MaxPoint()
	if startRow > max.Row {
		return nil
	}
	cur := sumtree.NewCursor[Transform, TransformSummary, WrapPoint](s.tree, outputDim)
	cur.Seek(WrapPoint{Row: startRow, Column: 0}, sumtree.Right)

	rows := make([]*uint32, 0, max.Row-startRow+1)
	currentRow := startRow
	for currentRow <= max.Row {
		item, ok := cur.Item()
		if !ok {
			rows = append(rows, nil)
			currentRow++
			continue
		}
		if item.Display {
			rows = append(rows, nil)
		} else {
			in, out := inputDim(cur.SummaryBefore()), outputDim(cur.SummaryBefore())
			switch {
			case out.Row < currentRow:
				// currentRow begins after a newline inside this run.
				br := in.Row + (currentRow - out.Row)
				rows = append(rows, &br)
			case in.Column == 0:
				br := in.Row
				rows = append(rows, &br)
			default:
				// the run resumes a buffer line after a zero-indent wrap break
				rows = append(rows, nil)
			}
		}
		currentRow++
		cur.Seek(WrapPoint{Row: currentRow, Column: 0}, sumtree.Right)
	}
	return rows
}
