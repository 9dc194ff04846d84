// Package wraptransform implements the soft-wrap display transform:
// a sum-tree of Transforms over a tabtransform.TabSnapshot that
// inserts synthetic newlines and indentation at wrap boundaries
// computed by LineWrapper. It is the central algorithm of this core
// (spec §4.4): short edits are rewrapped synchronously, long ones are
// spliced in by interpolation at once and rewrapped on a background
// goroutine whose result is merged back atomically, mirroring the teacher's
// LineCache's foreground-fast-path / exclusive-write-path split.
package wraptransform
