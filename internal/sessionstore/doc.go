// Package sessionstore is the transactional Postgres persistence layer
// for the channel subsystem (spec §5 "Channel engine", §6.2) and for
// Room lifecycle (spec §5 "Rooms", §6.1 JoinChannel). Every exported
// method that mutates state runs inside a single pgx transaction, per
// spec §5: "Every externally callable operation runs in a single
// database transaction."
package sessionstore
