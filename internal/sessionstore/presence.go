package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/membership"
)

// MembershipEvent is published on a channel's membership pub/sub
// channel whenever a join produces a membership diff, grounded on
// intelligencedev-manifold's RedisGenerationCache.PublishInvalidation
// (JSON-encoded event, Publish on a per-resource channel).
type MembershipEvent struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	UserID    channelgraph.UserID    `json:"user_id"`
	Role      channelgraph.Role      `json:"role"`
	Accepted  bool                   `json:"accepted"`
	Removed   bool                   `json:"removed"`
}

// Presence tracks room participant sets in Redis and fans membership
// changes out to subscribers, separate from the Postgres system of
// record: a participant leaving a room without a membership change
// (a disconnect) only touches this cache, never the database.
type Presence struct {
	client redis.UniversalClient
}

// NewPresence wraps an already-configured go-redis client. Passing a
// nil client is valid: every method becomes a no-op, so a deployment
// without Redis configured simply skips presence/pub-sub (it keeps
// the Postgres-backed membership and room logic fully functional).
func NewPresence(client redis.UniversalClient) *Presence {
	return &Presence{client: client}
}

func presenceKey(roomID string) string {
	return "collabcore:room:" + roomID + ":participants"
}

func membershipChannel(ch channelgraph.ChannelID) string {
	return "collabcore:channel:" + string(ch) + ":membership"
}

// JoinRoom adds user to roomID's presence set, resets the whole set's
// expiry to ttl, and returns the current participant count.
func (p *Presence) JoinRoom(ctx context.Context, roomID string, user channelgraph.UserID, ttl time.Duration) (int64, error) {
	if p.client == nil {
		return 0, nil
	}
	key := presenceKey(roomID)
	pipe := p.client.TxPipeline()
	pipe.SAdd(ctx, key, string(user))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return p.client.SCard(ctx, key).Result()
}

// LeaveRoom removes user from roomID's presence set.
func (p *Presence) LeaveRoom(ctx context.Context, roomID string, user channelgraph.UserID) error {
	if p.client == nil {
		return nil
	}
	return p.client.SRem(ctx, presenceKey(roomID), string(user)).Err()
}

// RoomSize returns the current presence-set size for roomID.
func (p *Presence) RoomSize(ctx context.Context, roomID string) (int64, error) {
	if p.client == nil {
		return 0, nil
	}
	return p.client.SCard(ctx, presenceKey(roomID)).Result()
}

// PublishMembershipDiff fans a membership change out to subscribers of
// ch's membership channel, used by JoinChannel's auto-accept and
// auto-Guest paths to notify already-connected peers.
func (p *Presence) PublishMembershipDiff(ctx context.Context, diff *membership.MembershipDiff) error {
	if p.client == nil || diff == nil {
		return nil
	}
	data, err := json.Marshal(MembershipEvent{
		ChannelID: diff.ChannelID,
		UserID:    diff.UserID,
		Role:      diff.Role,
		Accepted:  diff.Accepted,
		Removed:   diff.Removed,
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, membershipChannel(diff.ChannelID), data).Err()
}

// SubscribeMembership returns a channel of decoded membership events
// for ch, and a cancel func that closes the subscription, mirroring
// RedisGenerationCache.SubscribeInvalidations's shape.
func (p *Presence) SubscribeMembership(ctx context.Context, ch channelgraph.ChannelID) (<-chan MembershipEvent, func()) {
	out := make(chan MembershipEvent, 1)
	if p.client == nil {
		close(out)
		return out, func() {}
	}
	sub := p.client.Subscribe(ctx, membershipChannel(ch))
	go func() {
		for msg := range sub.Channel() {
			var ev MembershipEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()
	cancel := func() {
		_ = sub.Close()
		close(out)
	}
	return out, cancel
}
