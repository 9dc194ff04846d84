package sessionstore

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshills/collabcore/internal/channelgraph"
)

// TestChannelLifecycle exercises create/invite/accept/join against a
// real Postgres instance, skipped when none is configured, exactly as
// intelligencedev-manifold's TestStoreSchemaAndUser does for auth.Store.
func TestChannelLifecycle(t *testing.T) {
	dsn := os.Getenv("COLLABCORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("COLLABCORE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	s := New(pool)
	if err := s.InitSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	ch, changed, err := s.CreateChannel(ctx, "#lifecycle-test", nil, "u1")
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	if len(changed) != 1 || changed[0] != "u1" {
		t.Fatalf("changed = %v", changed)
	}

	if _, err := s.InviteChannelMember(ctx, ch.ID, "u2", "u1", channelgraph.Member); err != nil {
		t.Fatalf("invite: %v", err)
	}
	diff, err := s.RespondToChannelInvite(ctx, ch.ID, "u2", true)
	if err != nil || diff == nil || !diff.Accepted {
		t.Fatalf("accept: diff=%+v err=%v", diff, err)
	}

	join, err := s.JoinChannel(ctx, ch.ID, "u2", "staging")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if join.Role != channelgraph.Member || join.RoomID == "" {
		t.Fatalf("unexpected join result: %+v", join)
	}

	if _, err := s.JoinChannel(ctx, ch.ID, "u2", "production"); channelgraph.Kind(err) != channelgraph.KindWrongReleaseChannel {
		t.Fatalf("mismatched environment should fail with WrongReleaseChannel, got %v", err)
	}

	details, err := s.GetChannelParticipantDetails(ctx, ch.ID, "u1")
	if err != nil {
		t.Fatalf("participant details: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 participants, got %d: %+v", len(details), details)
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, string(ch.ID)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
