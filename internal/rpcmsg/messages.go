package rpcmsg

import "github.com/dshills/collabcore/internal/channelgraph"

// ChannelInvitation is the notification payload delivered when
// invite_channel_member runs (spec §6.1).
type ChannelInvitation struct {
	ChannelID   channelgraph.ChannelID `json:"channel_id"`
	ChannelName string                 `json:"channel_name"`
	InviterID   channelgraph.UserID    `json:"inviter_id"`
}

// The following request types mirror spec §4.5's operations table
// 1:1 (spec §6.1: "Channel CRUD requests mirror §4.5 operations").

type CreateChannelRequest struct {
	Name     string                  `json:"name"`
	ParentID *channelgraph.ChannelID `json:"parent_id,omitempty"`
}

type SetChannelVisibilityRequest struct {
	ChannelID  channelgraph.ChannelID `json:"channel_id"`
	Visibility channelgraph.Visibility `json:"visibility"`
}

type RenameChannelRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	NewName   string                 `json:"new_name"`
}

type DeleteChannelRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
}

type InviteChannelMemberRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	InviteeID channelgraph.UserID    `json:"invitee_id"`
	Role      channelgraph.Role      `json:"role"`
}

type RespondToChannelInviteRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	Accept    bool                   `json:"accept"`
}

type SetChannelMemberRoleRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	UserID    channelgraph.UserID    `json:"user_id"`
	Role      channelgraph.Role      `json:"role"`
}

type RemoveChannelMemberRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
	UserID    channelgraph.UserID    `json:"user_id"`
}

type MoveChannelRequest struct {
	ChannelID   channelgraph.ChannelID  `json:"channel_id"`
	NewParentID *channelgraph.ChannelID `json:"new_parent_id,omitempty"`
}

// GetChannelParticipantDetailsRequest requests spec §4.5's
// participant-details query for a channel.
type GetChannelParticipantDetailsRequest struct {
	ChannelID channelgraph.ChannelID `json:"channel_id"`
}

// JoinChannel is the join_channel request (spec §6.1).
type JoinChannel struct {
	ChannelID   channelgraph.ChannelID `json:"channel_id"`
	Environment string                 `json:"environment"`
}

// JoinRoomResult is join_channel's success response.
type JoinRoomResult struct {
	RoomID      string            `json:"room_id"`
	LiveKitRoom string            `json:"live_kit_room"`
	Role        channelgraph.Role `json:"role"`
}

// Forbidden is the generic access-denied response body.
type Forbidden struct {
	Reason string `json:"reason,omitempty"`
}

// WrongReleaseChannel is join_channel's environment-mismatch failure
// (spec §6.1: "WrongReleaseChannel { required_env }").
type WrongReleaseChannel struct {
	RequiredEnv string `json:"required_env"`
}
