package sessionstore

import "context"

// InitSchema creates the tables spec §6.2 names if they do not exist
// yet, grounded on intelligencedev-manifold's internal/auth/store.go
// InitSchema (CREATE TABLE IF NOT EXISTS, executed once at startup).
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS channels (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  visibility SMALLINT NOT NULL DEFAULT 0,
  parent_path TEXT NOT NULL DEFAULT '',
  requires_zed_cla BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS channels_parent_path_idx ON channels (parent_path text_pattern_ops);

CREATE TABLE IF NOT EXISTS channel_members (
  channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  accepted BOOLEAN NOT NULL DEFAULT false,
  role SMALLINT NOT NULL,
  PRIMARY KEY (channel_id, user_id)
);
CREATE INDEX IF NOT EXISTS channel_members_user_accepted_idx ON channel_members (user_id, accepted);

CREATE TABLE IF NOT EXISTS rooms (
  id TEXT PRIMARY KEY,
  channel_id TEXT UNIQUE REFERENCES channels(id) ON DELETE CASCADE,
  live_kit_room TEXT NOT NULL,
  environment TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS room_participants (
  room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  PRIMARY KEY (room_id, user_id)
);
`)
	return err
}
