package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/membership"
)

// presenceTTL is the expiry set on a room's whole Redis presence set;
// each JoinChannel call into the room resets it, and when it lapses
// the set expires together with all its participants.
const presenceTTL = 2 * time.Minute

// JoinRoomResult is the persistence-layer completion of
// membership.JoinResult: once the membership decision is made, a room
// is looked up or created for ch and the joining user is recorded as
// a participant (spec §6.1 JoinChannel -> JoinRoomResult).
type JoinRoomResult struct {
	RoomID         string
	LiveKitRoom    string
	Role           channelgraph.Role
	MembershipDiff *membership.MembershipDiff
}

// JoinChannel implements join_channel end to end: the membership
// decision (delegated to membership.Engine, which never touches a
// database) plus the room upsert spec §5 "Rooms" describes — "a room
// is exclusively owned by its channel; concurrent join_channel calls
// for the same channel serialize on row insert of the room (upsert:
// take existing or create one). Environment mismatch is a hard
// rejection, not a reconfiguration."
func (s *Store) JoinChannel(ctx context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, env string) (JoinRoomResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return JoinRoomResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	graph, err := loadGraph(ctx, tx)
	if err != nil {
		return JoinRoomResult{}, err
	}
	before := snapshot(graph)

	engine := membership.NewEngine(graph)
	joinResult, err := engine.JoinChannel(ch, user)
	if err != nil {
		return JoinRoomResult{}, err
	}

	if err := reconcile(ctx, tx, before, graph); err != nil {
		return JoinRoomResult{}, err
	}

	roomID, liveKitRoom, err := s.upsertRoom(ctx, tx, ch, env)
	if err != nil {
		return JoinRoomResult{}, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO room_participants (room_id, user_id) VALUES ($1,$2)
ON CONFLICT (room_id, user_id) DO NOTHING
`, roomID, string(user)); err != nil {
		return JoinRoomResult{}, fmt.Errorf("add room participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return JoinRoomResult{}, fmt.Errorf("commit transaction: %w", err)
	}

	// Presence/pub-sub is a best-effort side channel, not the system of
	// record: a Redis hiccup here must never roll back a committed join.
	_, _ = s.presence.JoinRoom(ctx, roomID, user, presenceTTL)
	if joinResult.MembershipUpdate != nil {
		_ = s.presence.PublishMembershipDiff(ctx, joinResult.MembershipUpdate)
	}

	return JoinRoomResult{
		RoomID:         roomID,
		LiveKitRoom:    liveKitRoom,
		Role:           joinResult.Role,
		MembershipDiff: joinResult.MembershipUpdate,
	}, nil
}

// upsertRoom takes the existing room row for ch or creates one,
// serialized by the row-level lock the INSERT ... ON CONFLICT takes.
// A mismatched environment on an existing room is a hard rejection
// (spec §5: "not a reconfiguration"), surfaced as
// *channelgraph.WrongReleaseChannelError.
func (s *Store) upsertRoom(ctx context.Context, tx pgx.Tx, ch channelgraph.ChannelID, env string) (roomID, liveKitRoom string, err error) {
	newID := uuid.NewString()
	newLiveKitRoom := "collab-" + newID

	row := tx.QueryRow(ctx, `
INSERT INTO rooms (id, channel_id, live_kit_room, environment)
VALUES ($1,$2,$3,$4)
ON CONFLICT (channel_id) DO UPDATE SET channel_id = EXCLUDED.channel_id
RETURNING id, live_kit_room, environment
`, newID, string(ch), newLiveKitRoom, env)

	var (
		id, liveKit, existingEnv string
	)
	if err := row.Scan(&id, &liveKit, &existingEnv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("upsert room for %s: %w", ch, channelgraph.ErrInternal)
		}
		return "", "", fmt.Errorf("upsert room for %s: %w", ch, err)
	}
	if existingEnv != env {
		return "", "", &channelgraph.WrongReleaseChannelError{Required: existingEnv}
	}
	return id, liveKit, nil
}
