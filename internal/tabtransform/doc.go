// Package tabtransform expands hard tabs in a rope into spaces at a
// configurable width, exposing the expanded text through its own
// TabPoint coordinate space. It is the "minimal contract" transform
// in front of the wrap pipeline: unlike wraptransform it has no
// interpolate/rewrap state machine, since re-deriving tab expansion
// for an edited range is always cheap (bounded by the edited lines).
package tabtransform
