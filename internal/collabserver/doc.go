// Package collabserver wires internal/channelgraph, internal/membership,
// internal/sessionstore, and internal/rpcmsg behind the operations
// table of spec §4.5, instrumented with Prometheus metrics and the
// adapted internal/obslog logger.
package collabserver
