package sessionstore

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed persistence layer. It holds no
// channelgraph.Graph of its own: every operation loads a fresh graph
// inside its transaction, runs the corresponding membership.Engine
// method against it, and writes back whatever changed before
// committing.
type Store struct {
	pool     *pgxpool.Pool
	presence *Presence
}

// New wraps an already-configured pgxpool.Pool. Callers build the
// pool from serverconfig.Settings.DatabaseDSN.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, presence: NewPresence(nil)}
}

// WithPresence attaches a Redis-backed Presence tracker for room
// membership fanout, built from serverconfig.Settings.RedisAddr. A
// Store with no Presence attached still functions: JoinChannel simply
// skips the presence-set update and pub/sub notification.
func (s *Store) WithPresence(p *Presence) *Store {
	s.presence = p
	return s
}
