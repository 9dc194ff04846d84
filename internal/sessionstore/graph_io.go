package sessionstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dshills/collabcore/internal/channelgraph"
)

// querier is satisfied by both pgxpool.Pool and pgx.Tx, so
// loadGraph/reconcile work identically whether called outside or
// inside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
}

// loadGraph reads every channel and membership row visible to q into
// an in-memory channelgraph.Graph. It is the Postgres-backed mirror of
// the teacher's MemGraph construction, reconstructed fresh per
// transaction rather than cached, since the channel engine has no
// in-process lock shared across requests (spec §5: "isolation is
// delegated to the database").
func loadGraph(ctx context.Context, q querier) (*channelgraph.Graph, error) {
	rows, err := q.Query(ctx, `SELECT id, name, visibility, parent_path, requires_zed_cla FROM channels`)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	type rawChannel struct {
		id, name, parentPath string
		visibility           int16
		requiresCLA          bool
	}
	var raws []rawChannel
	for rows.Next() {
		var r rawChannel
		if err := rows.Scan(&r.id, &r.name, &r.visibility, &r.parentPath, &r.requiresCLA); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		raws = append(raws, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}

	// AddChannel requires a channel's parent to already be present, so
	// insert root-first by ancestor depth (number of path segments).
	sort.Slice(raws, func(i, j int) bool {
		return strings.Count(raws[i].parentPath, "/") < strings.Count(raws[j].parentPath, "/")
	})

	g := channelgraph.New()
	for _, r := range raws {
		ch := channelgraph.Channel{
			ID:             channelgraph.ChannelID(r.id),
			Name:           r.name,
			Visibility:     channelgraph.Visibility(r.visibility),
			ParentPath:     r.parentPath,
			RequiresZedCLA: r.requiresCLA,
		}
		if err := g.AddChannel(ch); err != nil {
			return nil, fmt.Errorf("rebuild graph: %w", err)
		}
	}

	mrows, err := q.Query(ctx, `SELECT channel_id, user_id, accepted, role FROM channel_members`)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var (
			channelID, userID string
			accepted          bool
			role              int16
		)
		if err := mrows.Scan(&channelID, &userID, &accepted, &role); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		m := channelgraph.Membership{
			ChannelID: channelgraph.ChannelID(channelID),
			UserID:    channelgraph.UserID(userID),
			Role:      channelgraph.Role(role),
			Accepted:  accepted,
		}
		if err := g.SetMembership(m); err != nil {
			return nil, fmt.Errorf("rebuild memberships: %w", err)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	return g, nil
}

type channelKey = channelgraph.ChannelID

type membershipKey struct {
	channel channelgraph.ChannelID
	user    channelgraph.UserID
}

// graphSnapshot is a value-type copy of a Graph's channel and
// membership rows, taken before an Engine call mutates the Graph in
// place. Channel and Membership are plain value types, so capturing
// them into maps here is unaffected by later in-place mutation of the
// Graph's own internal maps.
type graphSnapshot struct {
	channels    map[channelKey]channelgraph.Channel
	memberships map[membershipKey]channelgraph.Membership
}

func snapshot(g *channelgraph.Graph) graphSnapshot {
	chans := indexChannels(g)
	return graphSnapshot{channels: chans, memberships: indexMemberships(g, chans)}
}

// reconcile diffs a pre-mutation snapshot against the graph's current
// (post-mutation) state and issues the minimal set of upserts/deletes
// needed to bring Postgres in line. It is generic across all ten
// operations: none of them need a bespoke persistence method, since
// every mutation an Engine method performs shows up as a difference
// between the two snapshots.
func reconcile(ctx context.Context, tx pgx.Tx, before graphSnapshot, after *channelgraph.Graph) error {
	beforeChans := before.channels
	afterChans := indexChannels(after)

	for id, ch := range afterChans {
		old, existed := beforeChans[id]
		if existed && old == ch {
			continue
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO channels (id, name, visibility, parent_path, requires_zed_cla)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  visibility = EXCLUDED.visibility,
  parent_path = EXCLUDED.parent_path,
  requires_zed_cla = EXCLUDED.requires_zed_cla
`, string(ch.ID), ch.Name, int16(ch.Visibility), ch.ParentPath, ch.RequiresZedCLA); err != nil {
			return fmt.Errorf("upsert channel %s: %w", ch.ID, err)
		}
	}
	for id := range beforeChans {
		if _, ok := afterChans[id]; !ok {
			if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE id = $1`, string(id)); err != nil {
				return fmt.Errorf("delete channel %s: %w", id, err)
			}
		}
	}

	beforeRows := before.memberships
	afterRows := indexMemberships(after, afterChans)

	for key, m := range afterRows {
		old, existed := beforeRows[key]
		if existed && old == m {
			continue
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO channel_members (channel_id, user_id, accepted, role)
VALUES ($1,$2,$3,$4)
ON CONFLICT (channel_id, user_id) DO UPDATE SET
  accepted = EXCLUDED.accepted,
  role = EXCLUDED.role
`, string(m.ChannelID), string(m.UserID), m.Accepted, int16(m.Role)); err != nil {
			return fmt.Errorf("upsert membership %s/%s: %w", m.ChannelID, m.UserID, err)
		}
	}
	for key := range beforeRows {
		if _, ok := afterRows[key]; !ok {
			if _, err := tx.Exec(ctx, `DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2`,
				string(key.channel), string(key.user)); err != nil {
				return fmt.Errorf("delete membership %s/%s: %w", key.channel, key.user, err)
			}
		}
	}
	return nil
}

func indexChannels(g *channelgraph.Graph) map[channelKey]channelgraph.Channel {
	out := make(map[channelKey]channelgraph.Channel)
	for _, ch := range g.AllChannels() {
		out[ch.ID] = ch
	}
	return out
}

func indexMemberships(g *channelgraph.Graph, chans map[channelKey]channelgraph.Channel) map[membershipKey]channelgraph.Membership {
	out := make(map[membershipKey]channelgraph.Membership)
	for id := range chans {
		for _, m := range g.MembershipsForChannel(id) {
			out[membershipKey{channel: m.ChannelID, user: m.UserID}] = m
		}
	}
	return out
}
