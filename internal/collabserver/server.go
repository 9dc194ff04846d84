package collabserver

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/obslog"
	"github.com/dshills/collabcore/internal/rpcmsg"
)

// Server dispatches decoded rpcmsg envelopes to a Backend, recording
// Prometheus metrics and structured log lines per call.
type Server struct {
	backend Backend
	log     *obslog.Logger
}

// NewServer builds a Server. log may be obslog.Nop in tests.
func NewServer(backend Backend, log *obslog.Logger) *Server {
	if log == nil {
		log = obslog.Nop
	}
	return &Server{backend: backend, log: log}
}

// Handle decodes one RPC envelope, dispatches it, and encodes the
// response or error envelope. The caller id must already be attached
// via WithUser; Handle returns an error otherwise.
func (s *Server) Handle(ctx context.Context, data []byte) ([]byte, error) {
	env, err := rpcmsg.Decode(data)
	if err != nil {
		return nil, err
	}

	by, ok := UserFromContext(ctx)
	if !ok {
		return nil, errNoCaller
	}

	start := time.Now()
	respType, respPayload, opErr := s.dispatch(ctx, env, by)
	recordOperation(env.Type, start, opErr)

	if opErr != nil {
		s.log.Warnf("rpc %s failed: %v", env.Type, opErr)
		if channelgraph.Kind(opErr) == channelgraph.KindConflict {
			RecordConflict()
		}
		errType, errPayload := rpcmsg.ErrorResponse(opErr)
		return rpcmsg.Encode(errType, env.RequestID, errPayload)
	}
	s.log.Debugf("rpc %s ok", env.Type)
	return rpcmsg.Encode(respType, env.RequestID, respPayload)
}

var errNoCaller = fmt.Errorf("collabserver: no caller attached to context")

func (s *Server) dispatch(ctx context.Context, env rpcmsg.Envelope, by channelgraph.UserID) (string, any, error) {
	switch env.Type {
	case "create_channel":
		var req rpcmsg.CreateChannelRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		ch, _, err := s.backend.CreateChannel(ctx, req.Name, req.ParentID, by)
		if err != nil {
			return "", nil, err
		}
		return "channel", ch, nil

	case "set_channel_visibility":
		var req rpcmsg.SetChannelVisibilityRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		result, err := s.backend.SetChannelVisibility(ctx, req.ChannelID, req.Visibility, by)
		if err != nil {
			return "", nil, err
		}
		return "visibility_changed", result, nil

	case "rename_channel":
		var req rpcmsg.RenameChannelRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		notify, err := s.backend.RenameChannel(ctx, req.ChannelID, req.NewName, by)
		if err != nil {
			return "", nil, err
		}
		return "channel_renamed", notify, nil

	case "delete_channel":
		var req rpcmsg.DeleteChannelRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		result, err := s.backend.DeleteChannel(ctx, req.ChannelID, by)
		if err != nil {
			return "", nil, err
		}
		return "channel_deleted", result, nil

	case "invite_channel_member":
		var req rpcmsg.InviteChannelMemberRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		notification, err := s.backend.InviteChannelMember(ctx, req.ChannelID, req.InviteeID, by, req.Role)
		if err != nil {
			return "", nil, err
		}
		return "channel_invitation", notification, nil

	case "respond_to_channel_invite":
		var req rpcmsg.RespondToChannelInviteRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		diff, err := s.backend.RespondToChannelInvite(ctx, req.ChannelID, by, req.Accept)
		if err != nil {
			return "", nil, err
		}
		return "membership_diff", diff, nil

	case "set_channel_member_role":
		var req rpcmsg.SetChannelMemberRoleRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		diff, err := s.backend.SetChannelMemberRole(ctx, req.ChannelID, by, req.UserID, req.Role)
		if err != nil {
			return "", nil, err
		}
		return "membership_diff", diff, nil

	case "remove_channel_member":
		var req rpcmsg.RemoveChannelMemberRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		diff, err := s.backend.RemoveChannelMember(ctx, req.ChannelID, req.UserID, by)
		if err != nil {
			return "", nil, err
		}
		return "membership_diff", diff, nil

	case "move_channel":
		var req rpcmsg.MoveChannelRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		result, err := s.backend.MoveChannel(ctx, req.ChannelID, req.NewParentID, by)
		if err != nil {
			return "", nil, err
		}
		return "channel_moved", result, nil

	case "join_channel":
		var req rpcmsg.JoinChannel
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		joined, err := s.backend.JoinChannel(ctx, req.ChannelID, by, req.Environment)
		if err != nil {
			return "", nil, err
		}
		return "join_room_result", rpcmsg.JoinRoomResult{
			RoomID:      joined.RoomID,
			LiveKitRoom: joined.LiveKitRoom,
			Role:        joined.Role,
		}, nil

	case "get_channel_participant_details":
		var req rpcmsg.GetChannelParticipantDetailsRequest
		if err := env.Unmarshal(&req); err != nil {
			return "", nil, err
		}
		details, err := s.backend.GetChannelParticipantDetails(ctx, req.ChannelID, by)
		if err != nil {
			return "", nil, err
		}
		return "participant_details", details, nil

	default:
		return "", nil, fmt.Errorf("collabserver: unknown rpc type %q", env.Type)
	}
}
