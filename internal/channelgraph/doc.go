// Package channelgraph models the channel hierarchy: channels, their
// parent_path ancestry, memberships, and the role lattice used to
// compute a user's effective role on a channel.
//
// It holds no persistence of its own; internal/sessionstore owns the
// durable rows and calls into this package's pure functions to decide
// access. The shape mirrors the teacher's internal/project/graph
// (mutex-guarded maps, path index, typed node/edge errors) generalized
// from a file-dependency graph to a channel-membership tree.
package channelgraph
