package rpcmsg

import (
	"errors"

	"github.com/dshills/collabcore/internal/channelgraph"
)

// ErrorResponse converts a channelgraph error into the wire message
// type and payload the RPC edge sends back, per spec §7's propagation
// policy: "Engine errors are propagated to the RPC edge verbatim."
func ErrorResponse(err error) (msgType string, payload any) {
	switch channelgraph.Kind(err) {
	case channelgraph.KindForbidden:
		return "forbidden", Forbidden{Reason: err.Error()}
	case channelgraph.KindWrongReleaseChannel:
		var wrc *channelgraph.WrongReleaseChannelError
		if errors.As(err, &wrc) {
			return "wrong_release_channel", WrongReleaseChannel{RequiredEnv: wrc.Required}
		}
		return "wrong_release_channel", WrongReleaseChannel{}
	case channelgraph.KindNoSuchChannel, channelgraph.KindNoSuchMember, channelgraph.KindNoSuchInvitation:
		return "not_found", Forbidden{Reason: err.Error()}
	case channelgraph.KindInvalidArgument:
		return "invalid_argument", Forbidden{Reason: err.Error()}
	case channelgraph.KindConflict:
		return "conflict", Forbidden{Reason: "retry"}
	default:
		return "internal", Forbidden{Reason: "internal error"}
	}
}
