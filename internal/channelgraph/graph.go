package channelgraph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Graph is the in-memory channel hierarchy and membership table. It is
// thread-safe for concurrent access, mirroring the teacher's MemGraph
// (internal/project/graph/graph.go): a single RWMutex guarding plain
// maps plus a path index for prefix lookups.
//
// Graph itself is not the system of record — internal/sessionstore
// persists channels and memberships in Postgres and reconstructs a
// whole Graph from them per request; it runs no role or descendant
// query in SQL. Graph exists so the role-lattice and descendant-query
// logic can be unit-tested without a database, and so
// internal/membership has a single place that implements §4.5's
// operations table.
type Graph struct {
	mu sync.RWMutex

	channels map[ChannelID]Channel
	// memberships indexes direct membership rows by channel then user,
	// same shape as the teacher's adjacency-list maps.
	memberships map[ChannelID]map[UserID]Membership
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		channels:    make(map[ChannelID]Channel),
		memberships: make(map[ChannelID]map[UserID]Membership),
	}
}

// AddChannel inserts a new channel. It fails if the id already exists
// or if ParentPath names a parent that does not exist.
func (g *Graph) AddChannel(ch Channel) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch.ID == "" {
		return fmt.Errorf("add channel: %w", ErrInvalidArgument)
	}
	if _, exists := g.channels[ch.ID]; exists {
		return fmt.Errorf("add channel %s: already exists: %w", ch.ID, ErrInvalidArgument)
	}
	if parent := ch.ParentID(); parent != "" {
		if _, ok := g.channels[parent]; !ok {
			return fmt.Errorf("add channel %s: parent %s: %w", ch.ID, parent, ErrNoSuchChannel)
		}
	}
	g.channels[ch.ID] = ch
	return nil
}

// GetChannel returns a channel by id.
func (g *Graph) GetChannel(id ChannelID) (Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ch, ok := g.channels[id]
	return ch, ok
}

// UpdateChannel replaces an existing channel's stored value.
func (g *Graph) UpdateChannel(ch Channel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.channels[ch.ID]; !ok {
		return fmt.Errorf("update channel %s: %w", ch.ID, ErrNoSuchChannel)
	}
	g.channels[ch.ID] = ch
	return nil
}

// RemoveChannel deletes a single channel node and its membership rows.
// It does not cascade to descendants; callers needing cascade
// (delete_channel) must resolve the descendant set first and call
// this once per id.
func (g *Graph) RemoveChannel(id ChannelID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.channels[id]; !ok {
		return fmt.Errorf("remove channel %s: %w", id, ErrNoSuchChannel)
	}
	delete(g.channels, id)
	delete(g.memberships, id)
	return nil
}

// AllChannels returns every channel in the graph, order unspecified.
func (g *Graph) AllChannels() []Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Channel, 0, len(g.channels))
	for _, ch := range g.channels {
		out = append(out, ch)
	}
	return out
}

// SetMembership inserts or replaces the direct membership row for
// (m.ChannelID, m.UserID). Callers that must enforce "at most one
// direct row per (channel,user)" on insert use HasDirectMembership
// first (spec §3.4 invariant, and the SUPPLEMENTED belt-and-braces
// check membership.InviteChannelMember performs before calling this).
func (g *Graph) SetMembership(m Membership) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.channels[m.ChannelID]; !ok {
		return fmt.Errorf("set membership on %s: %w", m.ChannelID, ErrNoSuchChannel)
	}
	rows, ok := g.memberships[m.ChannelID]
	if !ok {
		rows = make(map[UserID]Membership)
		g.memberships[m.ChannelID] = rows
	}
	rows[m.UserID] = m
	return nil
}

// HasDirectMembership reports whether a direct row already exists.
func (g *Graph) HasDirectMembership(channel ChannelID, user UserID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows, ok := g.memberships[channel]
	if !ok {
		return false
	}
	_, ok = rows[user]
	return ok
}

// GetMembership returns the direct row for (channel,user), if any.
func (g *Graph) GetMembership(channel ChannelID, user UserID) (Membership, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows, ok := g.memberships[channel]
	if !ok {
		return Membership{}, false
	}
	m, ok := rows[user]
	return m, ok
}

// DeleteMembership removes the direct row for (channel,user).
func (g *Graph) DeleteMembership(channel ChannelID, user UserID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rows, ok := g.memberships[channel]
	if !ok {
		return fmt.Errorf("delete membership %s/%s: %w", channel, user, ErrNoSuchMember)
	}
	if _, ok := rows[user]; !ok {
		return fmt.Errorf("delete membership %s/%s: %w", channel, user, ErrNoSuchMember)
	}
	delete(rows, user)
	return nil
}

// MembershipsForChannel returns every direct row stored on channel.
func (g *Graph) MembershipsForChannel(channel ChannelID) []Membership {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rows := g.memberships[channel]
	out := make([]Membership, 0, len(rows))
	for _, m := range rows {
		out = append(out, m)
	}
	return out
}

// MembershipsForUser returns every direct row belonging to user, across
// all channels.
func (g *Graph) MembershipsForUser(user UserID) []Membership {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Membership
	for _, rows := range g.memberships {
		if m, ok := rows[user]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ancestorChain returns the root-first chain of channels from the root
// down to and including ch itself. It assumes every ancestor id in
// ch.ParentPath exists (the invariant AddChannel enforces for direct
// parents; a corrupted store would violate it deeper in the chain,
// which is an Internal error, not a user-facing one).
func (g *Graph) ancestorChain(ch Channel) ([]Channel, error) {
	ids := ch.AncestorIDs()
	chain := make([]Channel, 0, len(ids)+1)
	for _, id := range ids {
		anc, ok := g.channels[id]
		if !ok {
			return nil, fmt.Errorf("ancestor chain for %s: missing ancestor %s: %w", ch.ID, id, ErrInternal)
		}
		chain = append(chain, anc)
	}
	chain = append(chain, ch)
	return chain, nil
}

// EffectiveRole computes user's effective role on channel per spec
// §4.5's role lattice: the maximum of Admin/Member rows across the
// root-to-channel ancestor chain, with Guest rows counting only when
// the row's own channel is Public AND the target channel itself is
// Public — visibility of any channel in between is irrelevant — and
// with a Banned row stored directly on the target overriding any role
// otherwise computed for that exact channel (a Banned row on an
// ancestor other than the target itself does not
// propagate and is simply not a source of access).
//
// ok is false when no row contributes any access (including the
// Banned-at-target case, which the caller should treat identically to
// "no access" — distinguishing a deliberate ban from an absent row is
// not needed by any operation in §4.5, all of which only ask "is
// access Forbidden").
func (g *Graph) EffectiveRole(user UserID, channel ChannelID) (Role, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ch, ok := g.channels[channel]
	if !ok {
		return 0, false, fmt.Errorf("effective role on %s: %w", channel, ErrNoSuchChannel)
	}
	chain, err := g.ancestorChain(ch)
	if err != nil {
		return 0, false, err
	}

	if direct, ok := g.memberships[channel][user]; ok && direct.Accepted && direct.Role == Banned {
		return Banned, false, nil
	}

	targetPublic := chain[len(chain)-1].Visibility == Public

	var (
		best  Role
		found bool
	)
	for _, node := range chain {
		rows := g.memberships[node.ID]
		row, ok := rows[user]
		if !ok || !row.Accepted || row.Role == Banned {
			continue
		}
		if row.Role == Guest && !(node.Visibility == Public && targetPublic) {
			continue
		}
		if !found {
			best = row.Role
		} else {
			best = maxRole(best, row.Role)
		}
		found = true
	}
	return best, found, nil
}

// NearestPublicAncestor returns the id of the closest-to-root Public
// channel in channel's ancestor-or-self chain, provided channel itself
// is Public. Per channel_role_for_user in the reference implementation
// (and spec §4.5: "a Guest row counts only where the row's channel is
// Public"), only the two endpoints matter — the row's own channel and
// the target channel — intermediate ancestors' visibility is
// irrelevant. It is used by join_channel's auto-Guest path (spec §4.5
// operations table: "auto-Guest on the nearest public ancestor
// including self").
func (g *Graph) NearestPublicAncestor(channel ChannelID) (ChannelID, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ch, ok := g.channels[channel]
	if !ok {
		return "", false, fmt.Errorf("nearest public ancestor of %s: %w", channel, ErrNoSuchChannel)
	}
	chain, err := g.ancestorChain(ch)
	if err != nil {
		return "", false, err
	}
	if chain[len(chain)-1].Visibility != Public {
		return "", false, nil
	}
	for _, node := range chain {
		if node.Visibility == Public {
			return node.ID, true, nil
		}
	}
	return "", false, nil
}

// IsDescendantOrSelf reports whether candidate is channel or lies
// anywhere within channel's subtree.
func (g *Graph) IsDescendantOrSelf(channel, candidate ChannelID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if channel == candidate {
		return true, nil
	}
	parent, ok := g.channels[channel]
	if !ok {
		return false, fmt.Errorf("is descendant: %w", ErrNoSuchChannel)
	}
	cand, ok := g.channels[candidate]
	if !ok {
		return false, fmt.Errorf("is descendant: %w", ErrNoSuchChannel)
	}
	return IsDescendantPath(parent.FullPath(), cand.ParentPath) || cand.ParentPath == parent.FullPath(), nil
}

// Descendants computes, in one pass, the union of (a) channels whose
// id is in ids and (b) channels lying within any of those channels'
// subtrees, ordered by the synthesized ParentPath||ID path (spec
// §4.5 "Descendant query"). internal/sessionstore's Postgres
// implementation expresses the same union as a single SQL predicate;
// this is the in-memory reference used for tests and for the parts of
// the engine that operate on an already-loaded Graph.
func (g *Graph) Descendants(ids []ChannelID) []Channel {
	g.mu.RLock()
	defer g.mu.RUnlock()

	want := make(map[ChannelID]bool, len(ids))
	var prefixes []string
	for _, id := range ids {
		want[id] = true
		if ch, ok := g.channels[id]; ok {
			prefixes = append(prefixes, ch.FullPath())
		}
	}

	var out []Channel
	for _, ch := range g.channels {
		if want[ch.ID] {
			out = append(out, ch)
			continue
		}
		for _, p := range prefixes {
			if IsDescendantPath(p, ch.ParentPath) {
				out = append(out, ch)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ParentPath+string(out[i].ID) < out[j].ParentPath+string(out[j].ID)
	})
	return out
}

// MoveSubtree rewrites ch's ParentPath to newParentPath and rewrites
// every descendant's ParentPath by replacing the old prefix with the
// new one, exactly as the original's move_channel does with a single
// `REPLACE(parent_path, old, new)` update (grounded on
// original_source/.../channels.rs's move_channel). Callers must check
// the move-cycle guard (spec §8.3) before calling this.
func (g *Graph) MoveSubtree(ch ChannelID, newParentPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.channels[ch]
	if !ok {
		return fmt.Errorf("move subtree %s: %w", ch, ErrNoSuchChannel)
	}
	oldPrefix := node.FullPath()
	newPrefix := newParentPath + string(ch) + "/"

	node.ParentPath = newParentPath
	g.channels[ch] = node

	for id, c := range g.channels {
		if id == ch {
			continue
		}
		if strings.HasPrefix(c.ParentPath, oldPrefix) {
			c.ParentPath = newPrefix + strings.TrimPrefix(c.ParentPath, oldPrefix)
			g.channels[id] = c
		}
	}
	return nil
}
