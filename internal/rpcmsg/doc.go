// Package rpcmsg defines the channel-subsystem RPC message shapes
// (spec §6.1) and the JSON envelope they travel in. The envelope
// itself is intentionally schema-light: a type tag plus a raw payload,
// patched and inspected with github.com/tidwall/sjson and
// github.com/tidwall/gjson rather than round-tripped through a
// wrapper struct on every hop.
package rpcmsg
