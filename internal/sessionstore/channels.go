package sessionstore

import (
	"context"
	"fmt"

	"github.com/dshills/collabcore/internal/channelgraph"
	"github.com/dshills/collabcore/internal/membership"
)

// withTx runs fn inside a single pgx transaction: load the graph,
// call fn against a membership.Engine over it, reconcile whatever
// changed back to Postgres, then commit. Every channel operation in
// this file goes through it, matching spec §5's "every externally
// callable operation runs in a single database transaction."
// JoinChannel in rooms.go runs the same steps in its own transaction.
func withTx[T any](ctx context.Context, s *Store, fn func(*membership.Engine) (T, error)) (T, error) {
	var zero T

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	graph, err := loadGraph(ctx, tx)
	if err != nil {
		return zero, err
	}
	before := snapshot(graph)

	engine := membership.NewEngine(graph)
	result, err := fn(engine)
	if err != nil {
		return zero, err
	}

	if err := reconcile(ctx, tx, before, graph); err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

func (s *Store) CreateChannel(ctx context.Context, name string, parent *channelgraph.ChannelID, by channelgraph.UserID) (channelgraph.Channel, []channelgraph.UserID, error) {
	type result struct {
		ch      channelgraph.Channel
		changed []channelgraph.UserID
	}
	r, err := withTx(ctx, s, func(e *membership.Engine) (result, error) {
		ch, changed, err := e.CreateChannel(name, parent, by)
		return result{ch, changed}, err
	})
	return r.ch, r.changed, err
}

func (s *Store) SetChannelVisibility(ctx context.Context, ch channelgraph.ChannelID, vis channelgraph.Visibility, by channelgraph.UserID) (membership.VisibilityChangeResult, error) {
	return withTx(ctx, s, func(e *membership.Engine) (membership.VisibilityChangeResult, error) {
		return e.SetChannelVisibility(ch, vis, by)
	})
}

func (s *Store) RenameChannel(ctx context.Context, ch channelgraph.ChannelID, newName string, by channelgraph.UserID) ([]channelgraph.UserID, error) {
	return withTx(ctx, s, func(e *membership.Engine) ([]channelgraph.UserID, error) {
		return e.RenameChannel(ch, newName, by)
	})
}

func (s *Store) DeleteChannel(ctx context.Context, ch channelgraph.ChannelID, by channelgraph.UserID) (membership.DeleteResult, error) {
	return withTx(ctx, s, func(e *membership.Engine) (membership.DeleteResult, error) {
		return e.DeleteChannel(ch, by)
	})
}

func (s *Store) InviteChannelMember(ctx context.Context, ch channelgraph.ChannelID, invitee, inviter channelgraph.UserID, role channelgraph.Role) (membership.Notification, error) {
	return withTx(ctx, s, func(e *membership.Engine) (membership.Notification, error) {
		return e.InviteChannelMember(ch, invitee, inviter, role)
	})
}

func (s *Store) RespondToChannelInvite(ctx context.Context, ch channelgraph.ChannelID, user channelgraph.UserID, accept bool) (*membership.MembershipDiff, error) {
	return withTx(ctx, s, func(e *membership.Engine) (*membership.MembershipDiff, error) {
		return e.RespondToChannelInvite(ch, user, accept)
	})
}

func (s *Store) SetChannelMemberRole(ctx context.Context, ch channelgraph.ChannelID, by, user channelgraph.UserID, role channelgraph.Role) (*membership.MembershipDiff, error) {
	return withTx(ctx, s, func(e *membership.Engine) (*membership.MembershipDiff, error) {
		return e.SetChannelMemberRole(ch, by, user, role)
	})
}

func (s *Store) RemoveChannelMember(ctx context.Context, ch channelgraph.ChannelID, user, by channelgraph.UserID) (*membership.MembershipDiff, error) {
	return withTx(ctx, s, func(e *membership.Engine) (*membership.MembershipDiff, error) {
		return e.RemoveChannelMember(ch, user, by)
	})
}

func (s *Store) MoveChannel(ctx context.Context, ch channelgraph.ChannelID, newParent *channelgraph.ChannelID, by channelgraph.UserID) (membership.MoveResult, error) {
	return withTx(ctx, s, func(e *membership.Engine) (membership.MoveResult, error) {
		return e.MoveChannel(ch, newParent, by)
	})
}

// GetChannelParticipantDetails is read-only but still runs inside a
// transaction so it observes a consistent snapshot alongside any
// writes the same request performs (spec §5: "reads within a request
// that need to be consistent with writes execute inside the same
// transaction").
func (s *Store) GetChannelParticipantDetails(ctx context.Context, ch channelgraph.ChannelID, viewer channelgraph.UserID) ([]membership.ParticipantDetail, error) {
	return withTx(ctx, s, func(e *membership.Engine) ([]membership.ParticipantDetail, error) {
		return e.GetChannelParticipantDetails(ch, viewer)
	})
}
