package membership

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/collabcore/internal/channelgraph"
)

// IDGenerator produces new channel ids. The default uses
// github.com/google/uuid (SPEC_FULL.md's DOMAIN STACK: "stable
// identifiers (channel/room/invite ids)").
type IDGenerator func() channelgraph.ChannelID

func defaultIDGenerator() channelgraph.ChannelID {
	return channelgraph.ChannelID(uuid.NewString())
}

// Engine implements the ten operations of spec §4.5's table against a
// channelgraph.Graph. It holds no database handle itself;
// internal/sessionstore constructs one per-transaction over a Graph
// loaded from the rows a given operation touches.
type Engine struct {
	graph *channelgraph.Graph
	newID IDGenerator
}

// NewEngine builds an Engine over graph, using the default
// uuid-based id generator.
func NewEngine(graph *channelgraph.Graph) *Engine {
	return &Engine{graph: graph, newID: defaultIDGenerator}
}

// WithIDGenerator overrides id generation, for tests that want
// deterministic ids.
func (e *Engine) WithIDGenerator(gen IDGenerator) *Engine {
	e.newID = gen
	return e
}

func sanitizeChannelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "#")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("channel name: %w", channelgraph.ErrInvalidArgument)
	}
	return name, nil
}

func (e *Engine) requireAdmin(by channelgraph.UserID, ch channelgraph.ChannelID) error {
	role, ok, err := e.graph.EffectiveRole(by, ch)
	if err != nil {
		return err
	}
	if !ok || role != channelgraph.Admin {
		return fmt.Errorf("user %s is not admin on %s: %w", by, ch, channelgraph.ErrForbidden)
	}
	return nil
}

// CreateChannel implements create_channel.
func (e *Engine) CreateChannel(name string, parent *channelgraph.ChannelID, by channelgraph.UserID) (channelgraph.Channel, []channelgraph.UserID, error) {
	clean, err := sanitizeChannelName(name)
	if err != nil {
		return channelgraph.Channel{}, nil, err
	}

	var parentPath string
	if parent != nil {
		if err := e.requireAdmin(by, *parent); err != nil {
			return channelgraph.Channel{}, nil, err
		}
		p, ok := e.graph.GetChannel(*parent)
		if !ok {
			return channelgraph.Channel{}, nil, fmt.Errorf("create channel: %w", channelgraph.ErrNoSuchChannel)
		}
		parentPath = p.FullPath()
	}

	ch := channelgraph.Channel{
		ID:         e.newID(),
		Name:       clean,
		Visibility: channelgraph.Members,
		ParentPath: parentPath,
	}
	if err := e.graph.AddChannel(ch); err != nil {
		return channelgraph.Channel{}, nil, err
	}

	var changed []channelgraph.UserID
	if parent == nil {
		if err := e.graph.SetMembership(channelgraph.Membership{
			ChannelID: ch.ID, UserID: by, Role: channelgraph.Admin, Accepted: true,
		}); err != nil {
			return channelgraph.Channel{}, nil, err
		}
		changed = []channelgraph.UserID{by}
	}
	return ch, changed, nil
}

// SetChannelVisibility implements set_channel_visibility.
func (e *Engine) SetChannelVisibility(ch channelgraph.ChannelID, vis channelgraph.Visibility, by channelgraph.UserID) (VisibilityChangeResult, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return VisibilityChangeResult{}, err
	}
	node, ok := e.graph.GetChannel(ch)
	if !ok {
		return VisibilityChangeResult{}, fmt.Errorf("set visibility: %w", channelgraph.ErrNoSuchChannel)
	}
	old := node.Visibility
	if old == vis {
		return VisibilityChangeResult{Channel: node}, nil
	}

	descendants := e.graph.Descendants([]channelgraph.ChannelID{ch})
	before := make(map[channelgraph.UserID]bool)
	for _, d := range descendants {
		for _, m := range e.graph.MembershipsForChannel(d.ID) {
			if m.Role == channelgraph.Guest && m.Accepted {
				if _, ok, _ := e.graph.EffectiveRole(m.UserID, d.ID); ok {
					before[m.UserID] = true
				}
			}
		}
	}

	node.Visibility = vis
	if err := e.graph.UpdateChannel(node); err != nil {
		return VisibilityChangeResult{}, err
	}

	result := VisibilityChangeResult{Channel: node}
	seenUsers := make(map[channelgraph.UserID]bool)
	for _, d := range descendants {
		if d.ID != ch && old == channelgraph.Public && vis == channelgraph.Members && d.Visibility == channelgraph.Public {
			result.ChannelsToRemove = append(result.ChannelsToRemove, d.ID)
		}
		for _, m := range e.graph.MembershipsForChannel(d.ID) {
			if m.Role != channelgraph.Guest || !m.Accepted || seenUsers[m.UserID] {
				continue
			}
			_, stillOK, _ := e.graph.EffectiveRole(m.UserID, d.ID)
			switch {
			case old == channelgraph.Public && vis == channelgraph.Members && before[m.UserID] && !stillOK:
				result.ParticipantsToRemove = append(result.ParticipantsToRemove, m.UserID)
				seenUsers[m.UserID] = true
			case old == channelgraph.Members && vis == channelgraph.Public && !before[m.UserID] && stillOK:
				result.ParticipantsToAdd = append(result.ParticipantsToAdd, m.UserID)
				seenUsers[m.UserID] = true
			}
		}
	}
	return result, nil
}

// RenameChannel implements rename_channel.
func (e *Engine) RenameChannel(ch channelgraph.ChannelID, newName string, by channelgraph.UserID) ([]channelgraph.UserID, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return nil, err
	}
	clean, err := sanitizeChannelName(newName)
	if err != nil {
		return nil, err
	}
	node, ok := e.graph.GetChannel(ch)
	if !ok {
		return nil, fmt.Errorf("rename channel: %w", channelgraph.ErrNoSuchChannel)
	}
	node.Name = clean
	if err := e.graph.UpdateChannel(node); err != nil {
		return nil, err
	}
	return e.collectParticipants(ch), nil
}

// DeleteChannel implements delete_channel.
func (e *Engine) DeleteChannel(ch channelgraph.ChannelID, by channelgraph.UserID) (DeleteResult, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return DeleteResult{}, err
	}
	users := e.collectParticipants(ch)
	descendants := e.graph.Descendants([]channelgraph.ChannelID{ch})

	ids := make([]channelgraph.ChannelID, 0, len(descendants))
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	// Remove leaves before their ancestors: Descendants sorts by path,
	// and an ancestor's path is a prefix of each descendant's, so
	// walking the list backwards visits every descendant first.
	for i := len(ids) - 1; i >= 0; i-- {
		if err := e.graph.RemoveChannel(ids[i]); err != nil {
			return DeleteResult{}, err
		}
	}
	return DeleteResult{RemovedChannelIDs: ids, UsersToNotify: users}, nil
}

// InviteChannelMember implements invite_channel_member.
func (e *Engine) InviteChannelMember(ch channelgraph.ChannelID, invitee, inviter channelgraph.UserID, role channelgraph.Role) (Notification, error) {
	if err := e.requireAdmin(inviter, ch); err != nil {
		return Notification{}, err
	}
	if e.graph.HasDirectMembership(ch, invitee) {
		return Notification{}, fmt.Errorf("invite %s to %s: %w", invitee, ch, channelgraph.ErrAlreadyMember)
	}
	node, ok := e.graph.GetChannel(ch)
	if !ok {
		return Notification{}, fmt.Errorf("invite member: %w", channelgraph.ErrNoSuchChannel)
	}
	if err := e.graph.SetMembership(channelgraph.Membership{
		ChannelID: ch, UserID: invitee, Role: role, Accepted: false,
	}); err != nil {
		return Notification{}, err
	}
	return Notification{ChannelID: ch, ChannelName: node.Name, InviterID: inviter, InviteeID: invitee}, nil
}

// RespondToChannelInvite implements respond_to_channel_invite.
func (e *Engine) RespondToChannelInvite(ch channelgraph.ChannelID, user channelgraph.UserID, accept bool) (*MembershipDiff, error) {
	row, ok := e.graph.GetMembership(ch, user)
	if !ok || row.Accepted {
		return nil, fmt.Errorf("respond to invite on %s: %w", ch, channelgraph.ErrNoSuchInvitation)
	}
	if !accept {
		if err := e.graph.DeleteMembership(ch, user); err != nil {
			return nil, err
		}
		return &MembershipDiff{ChannelID: ch, UserID: user, Role: row.Role, Removed: true}, nil
	}
	row.Accepted = true
	if err := e.graph.SetMembership(row); err != nil {
		return nil, err
	}
	return &MembershipDiff{ChannelID: ch, UserID: user, Role: row.Role, Accepted: true}, nil
}

// SetChannelMemberRole implements set_channel_member_role.
func (e *Engine) SetChannelMemberRole(ch channelgraph.ChannelID, by, user channelgraph.UserID, role channelgraph.Role) (*MembershipDiff, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return nil, err
	}
	row, ok := e.graph.GetMembership(ch, user)
	if !ok {
		return nil, fmt.Errorf("set member role on %s: %w", ch, channelgraph.ErrNoSuchMember)
	}
	row.Role = role
	if err := e.graph.SetMembership(row); err != nil {
		return nil, err
	}
	return &MembershipDiff{ChannelID: ch, UserID: user, Role: role, Accepted: row.Accepted}, nil
}

// RemoveChannelMember implements remove_channel_member.
func (e *Engine) RemoveChannelMember(ch channelgraph.ChannelID, user, by channelgraph.UserID) (*MembershipDiff, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return nil, err
	}
	row, ok := e.graph.GetMembership(ch, user)
	if !ok {
		return nil, fmt.Errorf("remove member from %s: %w", ch, channelgraph.ErrNoSuchMember)
	}
	if err := e.graph.DeleteMembership(ch, user); err != nil {
		return nil, err
	}
	return &MembershipDiff{ChannelID: ch, UserID: user, Role: row.Role, Removed: true}, nil
}

// MoveChannel implements move_channel.
func (e *Engine) MoveChannel(ch channelgraph.ChannelID, newParent *channelgraph.ChannelID, by channelgraph.UserID) (MoveResult, error) {
	if err := e.requireAdmin(by, ch); err != nil {
		return MoveResult{}, err
	}
	var newParentPath string
	if newParent != nil {
		if err := e.requireAdmin(by, *newParent); err != nil {
			return MoveResult{}, err
		}
		isDesc, err := e.graph.IsDescendantOrSelf(ch, *newParent)
		if err != nil {
			return MoveResult{}, err
		}
		if isDesc {
			return MoveResult{}, fmt.Errorf("move %s under its own descendant %s: %w", ch, *newParent, channelgraph.ErrInvalidArgument)
		}
		p, ok := e.graph.GetChannel(*newParent)
		if !ok {
			return MoveResult{}, fmt.Errorf("move channel: %w", channelgraph.ErrNoSuchChannel)
		}
		newParentPath = p.FullPath()
	}

	before := usersSet(e.collectParticipants(ch))

	if err := e.graph.MoveSubtree(ch, newParentPath); err != nil {
		return MoveResult{}, err
	}
	if newParent == nil && !e.graph.HasDirectMembership(ch, by) {
		if err := e.graph.SetMembership(channelgraph.Membership{
			ChannelID: ch, UserID: by, Role: channelgraph.Admin, Accepted: true,
		}); err != nil {
			return MoveResult{}, err
		}
	}

	after := usersSet(e.collectParticipants(ch))
	moved := e.graph.Descendants([]channelgraph.ChannelID{ch})
	ids := make([]channelgraph.ChannelID, 0, len(moved))
	for _, d := range moved {
		ids = append(ids, d.ID)
	}

	var losing, gaining []channelgraph.UserID
	for u := range before {
		if !after[u] {
			losing = append(losing, u)
		}
	}
	for u := range after {
		if !before[u] {
			gaining = append(gaining, u)
		}
	}
	return MoveResult{MovedChannelIDs: ids, UsersLosingAccess: losing, UsersGainingAccess: gaining}, nil
}

func usersSet(ids []channelgraph.UserID) map[channelgraph.UserID]bool {
	m := make(map[channelgraph.UserID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// JoinChannel implements join_channel's membership decision. It does
// not create or look up a Room; internal/sessionstore does that once
// it has the Role this returns, since room upsert and environment
// checking are a persistence concern (spec §5 "Rooms").
func (e *Engine) JoinChannel(ch channelgraph.ChannelID, user channelgraph.UserID) (JoinResult, error) {
	if direct, ok := e.graph.GetMembership(ch, user); ok && direct.Accepted && direct.Role == channelgraph.Banned {
		return JoinResult{}, fmt.Errorf("join %s: %w", ch, channelgraph.ErrForbidden)
	}

	if direct, ok := e.graph.GetMembership(ch, user); ok {
		if direct.Accepted {
			return JoinResult{Role: direct.Role}, nil
		}
		// Pending invite: auto-accept.
		direct.Accepted = true
		if err := e.graph.SetMembership(direct); err != nil {
			return JoinResult{}, err
		}
		return JoinResult{
			Role:             direct.Role,
			MembershipUpdate: &MembershipDiff{ChannelID: ch, UserID: user, Role: direct.Role, Accepted: true},
		}, nil
	}

	if role, ok, err := e.graph.EffectiveRole(user, ch); err != nil {
		return JoinResult{}, err
	} else if ok {
		return JoinResult{Role: role}, nil
	}

	publicAncestor, ok, err := e.graph.NearestPublicAncestor(ch)
	if err != nil {
		return JoinResult{}, err
	}
	if !ok {
		return JoinResult{}, fmt.Errorf("join %s: %w", ch, channelgraph.ErrForbidden)
	}
	if err := e.graph.SetMembership(channelgraph.Membership{
		ChannelID: publicAncestor, UserID: user, Role: channelgraph.Guest, Accepted: true,
	}); err != nil {
		return JoinResult{}, err
	}
	return JoinResult{
		Role:             channelgraph.Guest,
		AutoGrantedAt:    publicAncestor,
		MembershipUpdate: &MembershipDiff{ChannelID: publicAncestor, UserID: user, Role: channelgraph.Guest, Accepted: true},
	}, nil
}
