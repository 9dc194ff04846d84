package collabserver

import (
	"context"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/membership"
	"github.com/dshills/collabcore/internal/sessionstore"
)

// Backend is the set of transactional operations Server dispatches
// to. *sessionstore.Store satisfies it; tests substitute a fake that
// runs membership.Engine directly over an in-memory channelgraph.Graph
// without a database.
type Backend interface {
	CreateChannel(ctx context.Context, name string, parent *channelgraph.ChannelID, by channelgraph.UserID) (channelgraph.Channel, []channelgraph.UserID, error)
	SetChannelVisibility(ctx context.Context, ch channelgraph.ChannelID, vis channelgraph.Visibility, by channelgraph.UserID) (membership.VisibilityChangeResult, error)
	RenameChannel(ctx context.Context, ch channelgraph.ChannelID, newName string, by channelgraph.UserID) ([]channelgraph.UserID, error)
	DeleteChannel(ctx context.Context, ch channelgraph.ChannelID, by channelgraph.UserID) (membership.DeleteResult, error)
	InviteChannelMember(ctx context.Context, ch channelgraph.ChannelID, invitee, inviter channelgraph.UserID, role channelgraph.Role) (membership.Notification, error)
	RespondToChannelInvite(ctx context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, accept bool) (*membership.MembershipDiff, error)
	SetChannelMemberRole(ctx context.Context, ch channelgraph.ChannelID, by, user channelgraph.UserID, role channelgraph.Role) (*membership.MembershipDiff, error)
	RemoveChannelMember(ctx context.Context, ch channelgraph.ChannelID, user, by channelgraph.UserID) (*membership.MembershipDiff, error)
	MoveChannel(ctx context.Context, ch channelgraph.ChannelID, newParent *channelgraph.ChannelID, by channelgraph.UserID) (membership.MoveResult, error)
	JoinChannel(ctx context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, env string) (sessionstore.JoinRoomResult, error)
	GetChannelParticipantDetails(ctx context.Context, ch channelgraph.ChannelID, viewer channelgraph.UserID) ([]membership.ParticipantDetail, error)
}
