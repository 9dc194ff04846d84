// Package membership implements the ten channel operations of spec
// §4.5's operations table: creation, visibility, rename, delete,
// invite, respond-to-invite, role change, removal, move, and join. It
// is the logic layer; internal/sessionstore is the transaction
// boundary that loads the relevant rows from Postgres into a
// channelgraph.Graph, calls into Engine, and persists the result
// inside a single database transaction (spec §5: "every externally
// callable operation runs in a single database transaction").
//
// New relative to the teacher: nothing here is adapted from existing
// code, since the teacher is a single-user local editor with no
// membership concept. It is grounded on channelgraph's role lattice
// and on original_source/.../channels.rs for the exact shape of each
// operation's preconditions and side-effect outputs.
package membership
