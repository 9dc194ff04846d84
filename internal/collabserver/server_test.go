package collabserver

import (
	"context"
	"testing"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/membership"
	"github.com/dshills/collabcore/internal/rpcmsg"
	"github.com/dshills/collabcore/internal/sessionstore"
)

// fakeBackend runs membership.Engine directly over an in-memory
// channelgraph.Graph, letting Server's dispatch/encode/decode logic be
// tested without a database.
type fakeBackend struct {
	engine *membership.Engine
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{engine: membership.NewEngine(channelgraph.New())}
}

func (f *fakeBackend) CreateChannel(_ context.Context, name string, parent *channelgraph.ChannelID, by channelgraph.UserID) (channelgraph.Channel, []channelgraph.UserID, error) {
	return f.engine.CreateChannel(name, parent, by)
}
func (f *fakeBackend) SetChannelVisibility(_ context.Context, ch channelgraph.ChannelID, vis channelgraph.Visibility, by channelgraph.UserID) (membership.VisibilityChangeResult, error) {
	return f.engine.SetChannelVisibility(ch, vis, by)
}
func (f *fakeBackend) RenameChannel(_ context.Context, ch channelgraph.ChannelID, newName string, by channelgraph.UserID) ([]channelgraph.UserID, error) {
	return f.engine.RenameChannel(ch, newName, by)
}
func (f *fakeBackend) DeleteChannel(_ context.Context, ch channelgraph.ChannelID, by channelgraph.UserID) (membership.DeleteResult, error) {
	return f.engine.DeleteChannel(ch, by)
}
func (f *fakeBackend) InviteChannelMember(_ context.Context, ch channelgraph.ChannelID, invitee, inviter channelgraph.UserID, role channelgraph.Role) (membership.Notification, error) {
	return f.engine.InviteChannelMember(ch, invitee, inviter, role)
}
func (f *fakeBackend) RespondToChannelInvite(_ context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, accept bool) (*membership.MembershipDiff, error) {
	return f.engine.RespondToChannelInvite(ch, user, accept)
}
func (f *fakeBackend) SetChannelMemberRole(_ context.Context, ch channelgraph.ChannelID, by, user channelgraph.UserID, role channelgraph.Role) (*membership.MembershipDiff, error) {
	return f.engine.SetChannelMemberRole(ch, by, user, role)
}
func (f *fakeBackend) RemoveChannelMember(_ context.Context, ch channelgraph.ChannelID, user, by channelgraph.UserID) (*membership.MembershipDiff, error) {
	return f.engine.RemoveChannelMember(ch, user, by)
}
func (f *fakeBackend) MoveChannel(_ context.Context, ch channelgraph.ChannelID, newParent *channelgraph.ChannelID, by channelgraph.UserID) (membership.MoveResult, error) {
	return f.engine.MoveChannel(ch, newParent, by)
}
func (f *fakeBackend) JoinChannel(_ context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, env string) (sessionstore.JoinRoomResult, error) {
	result, err := f.engine.JoinChannel(ch, user)
	if err != nil {
		return sessionstore.JoinRoomResult{}, err
	}
	return sessionstore.JoinRoomResult{RoomID: "room-" + string(ch), LiveKitRoom: "livekit-" + string(ch), Role: result.Role}, nil
}
func (f *fakeBackend) GetChannelParticipantDetails(_ context.Context, ch channelgraph.ChannelID, viewer channelgraph.UserID) ([]membership.ParticipantDetail, error) {
	return f.engine.GetChannelParticipantDetails(ch, viewer)
}

func TestServerCreateAndJoinChannel(t *testing.T) {
	backend := newFakeBackend()
	srv := NewServer(backend, nil)
	ctx := WithUser(context.Background(), "u1")

	createReq, err := rpcmsg.Encode("create_channel", "r1", rpcmsg.CreateChannelRequest{Name: "#eng"})
	if err != nil {
		t.Fatal(err)
	}
	respData, err := srv.Handle(ctx, createReq)
	if err != nil {
		t.Fatalf("handle create: %v", err)
	}
	env, err := rpcmsg.Decode(respData)
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != "channel" {
		t.Fatalf("response type = %s", env.Type)
	}
	var ch channelgraph.Channel
	if err := env.Unmarshal(&ch); err != nil {
		t.Fatal(err)
	}

	// Make the channel public so another user can auto-join as guest.
	visReq, _ := rpcmsg.Encode("set_channel_visibility", "r2", rpcmsg.SetChannelVisibilityRequest{ChannelID: ch.ID, Visibility: channelgraph.Public})
	if _, err := srv.Handle(ctx, visReq); err != nil {
		t.Fatalf("set visibility: %v", err)
	}

	joinReq, _ := rpcmsg.Encode("join_channel", "r3", rpcmsg.JoinChannel{ChannelID: ch.ID, Environment: "staging"})
	guestCtx := WithUser(context.Background(), "guest1")
	joinResp, err := srv.Handle(guestCtx, joinReq)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	joinEnv, err := rpcmsg.Decode(joinResp)
	if err != nil {
		t.Fatal(err)
	}
	if joinEnv.Type != "join_room_result" {
		t.Fatalf("join response type = %s", joinEnv.Type)
	}
	var result rpcmsg.JoinRoomResult
	if err := joinEnv.Unmarshal(&result); err != nil {
		t.Fatal(err)
	}
	if result.Role != channelgraph.Guest || result.RoomID == "" {
		t.Fatalf("unexpected join result: %+v", result)
	}
}

func TestServerForbiddenProducesErrorEnvelope(t *testing.T) {
	backend := newFakeBackend()
	srv := NewServer(backend, nil)

	ch, _, err := backend.engine.CreateChannel("#priv", nil, "owner")
	if err != nil {
		t.Fatal(err)
	}

	joinReq, _ := rpcmsg.Encode("join_channel", "r1", rpcmsg.JoinChannel{ChannelID: ch.ID, Environment: "staging"})
	ctx := WithUser(context.Background(), "outsider")
	resp, err := srv.Handle(ctx, joinReq)
	if err != nil {
		t.Fatalf("Handle should encode the error, not return one: %v", err)
	}
	env, err := rpcmsg.Decode(resp)
	if err != nil {
		t.Fatal(err)
	}
	if env.Type != "forbidden" {
		t.Fatalf("response type = %s, want forbidden", env.Type)
	}
}

func TestServerRequiresCaller(t *testing.T) {
	srv := NewServer(newFakeBackend(), nil)
	req, _ := rpcmsg.Encode("create_channel", "r1", rpcmsg.CreateChannelRequest{Name: "#x"})
	if _, err := srv.Handle(context.Background(), req); err == nil {
		t.Fatal("expected error when no caller attached to context")
	}
}
