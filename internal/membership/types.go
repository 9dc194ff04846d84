package membership

import "github.com/dshills/collabcore/internal/channelgraph"

// MembershipDiff describes a role or acceptance change for one user on
// one channel, the shape the messaging layer delivers to clients (spec
// §4.5: "a diff (channel add/remove, role change)").
type MembershipDiff struct {
	ChannelID channelgraph.ChannelID
	UserID    channelgraph.UserID
	Role      channelgraph.Role
	Accepted  bool
	// Removed is true when the row no longer exists (decline, removal).
	Removed bool
}

// ParticipantKind classifies a row surfaced by GetChannelParticipantDetails
// (spec §4.5 "Participant details" step 3).
type ParticipantKind int

const (
	// KindMember is a direct, accepted row.
	KindMember ParticipantKind = iota
	// KindInvitee is a direct, pending row.
	KindInvitee
	// KindAncestorMember is an accepted row on a strict ancestor.
	KindAncestorMember
)

// ParticipantDetail is one row of GetChannelParticipantDetails' output.
type ParticipantDetail struct {
	UserID     channelgraph.UserID
	Role       channelgraph.Role
	Kind       ParticipantKind
	SourceChan channelgraph.ChannelID
}

// Notification is the payload shape spec §6.1 calls ChannelInvitation
// plus the generic "notification created/removed/marked read" outputs
// the operations table references.
type Notification struct {
	ChannelID   channelgraph.ChannelID
	ChannelName string
	InviterID   channelgraph.UserID
	InviteeID   channelgraph.UserID
}

// VisibilityChangeResult is set_channel_visibility's side-effect
// output (spec §4.5 table).
type VisibilityChangeResult struct {
	Channel              channelgraph.Channel
	ChannelsToRemove     []channelgraph.ChannelID
	ParticipantsToRemove []channelgraph.UserID
	ParticipantsToAdd    []channelgraph.UserID
}

// DeleteResult is delete_channel's side-effect output.
type DeleteResult struct {
	RemovedChannelIDs []channelgraph.ChannelID
	UsersToNotify     []channelgraph.UserID
}

// MoveResult is move_channel's side-effect output.
type MoveResult struct {
	MovedChannelIDs    []channelgraph.ChannelID
	UsersLosingAccess  []channelgraph.UserID
	UsersGainingAccess []channelgraph.UserID
}

// JoinResult is join_channel's side-effect output, minus the room
// itself: internal/sessionstore owns Room upsert and environment
// checking and wraps this with a room id once the membership decision
// is made.
type JoinResult struct {
	Role             channelgraph.Role
	MembershipUpdate *MembershipDiff
	// AutoGrantedAt is the channel (ch itself or a public ancestor) the
	// Guest row was written to, when auto-Guest applied. Empty otherwise.
	AutoGrantedAt channelgraph.ChannelID
}
