// Package rope implements a persistent, multi-coordinate text buffer.
//
// A Rope is a sumtree.Tree of Chunks. Every mutation (Append, Push,
// Replace, Slice) returns a new Rope; no operation visible from outside
// the package mutates a Rope's storage in place, so a snapshot may be
// held and read from concurrently with further edits to its successors.
//
// Four coordinate systems address the same text: byte offsets,
// UTF-16 code-unit offsets (for LSP interop), byte-oriented Points
// (row, byte column) and UTF-16 Points (row, UTF-16 column). Every
// translation between them saturates at the extremes of the target
// coordinate instead of panicking; see clip.go for the rules governing
// how a coordinate that doesn't land on a valid boundary is nudged.
package rope
