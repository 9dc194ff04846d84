// Package sumtree implements a generic, persistent, balanced B-tree whose
// leaves hold summarized items and whose internal nodes cache the monoid
// sum of their subtree's summaries.
//
// It is the shared backbone of the rope (internal/rope) and of the
// wrap display transform (internal/wraptransform); the tab transform
// reads through the rope and keeps no tree of its own. The rope and
// the wrap transform both need an indexable, structurally-shared
// sequence where a cursor can
// seek by some projection of the running summary ("dimension") and slice
// out sub-trees cheaply.
//
// Trees are immutable; every mutating operation (Concat, cursor Slice,
// UpdateLast) returns a new Tree sharing unmodified subtrees with its
// parent, so a snapshot may be held by a reader for as long as it likes
// while other goroutines build successor trees.
package sumtree
