package channelgraph

import "testing"

func mustAddRoot(t *testing.T, g *Graph, id ChannelID, vis Visibility) Channel {
	t.Helper()
	ch := Channel{ID: id, Name: string(id), Visibility: vis}
	if err := g.AddChannel(ch); err != nil {
		t.Fatalf("add root %s: %v", id, err)
	}
	return ch
}

func mustAddChild(t *testing.T, g *Graph, id, parent ChannelID, vis Visibility) Channel {
	t.Helper()
	p, ok := g.GetChannel(parent)
	if !ok {
		t.Fatalf("parent %s missing", parent)
	}
	ch := Channel{ID: id, Name: string(id), Visibility: vis, ParentPath: p.FullPath()}
	if err := g.AddChannel(ch); err != nil {
		t.Fatalf("add child %s: %v", id, err)
	}
	return ch
}

func TestAdminClosureOnRootCreate(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	if err := g.SetMembership(Membership{ChannelID: "c1", UserID: "u1", Role: Admin, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	role, ok, err := g.EffectiveRole("u1", "c1")
	if err != nil || !ok || role != Admin {
		t.Fatalf("role=%v ok=%v err=%v, want Admin", role, ok, err)
	}
}

func TestEffectiveRolePropagatesFromAncestor(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	mustAddChild(t, g, "c2", "c1", Members)
	if err := g.SetMembership(Membership{ChannelID: "c1", UserID: "u1", Role: Admin, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	role, ok, err := g.EffectiveRole("u1", "c2")
	if err != nil || !ok || role != Admin {
		t.Fatalf("role=%v ok=%v err=%v, want Admin via ancestor", role, ok, err)
	}
}

func TestGuestOnlyCountsWhenPublic(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	if err := g.SetMembership(Membership{ChannelID: "c1", UserID: "u2", Role: Guest, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := g.EffectiveRole("u2", "c1"); ok {
		t.Fatalf("guest row on a Members channel should not confer access")
	}

	g2 := New()
	mustAddRoot(t, g2, "pub", Public)
	if err := g2.SetMembership(Membership{ChannelID: "pub", UserID: "u2", Role: Guest, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	role, ok, err := g2.EffectiveRole("u2", "pub")
	if err != nil || !ok || role != Guest {
		t.Fatalf("role=%v ok=%v err=%v, want Guest on public channel", role, ok, err)
	}
}

func TestBannedAtTargetOverridesInheritedRole(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	mustAddChild(t, g, "c2", "c1", Members)
	if err := g.SetMembership(Membership{ChannelID: "c1", UserID: "u1", Role: Admin, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	if err := g.SetMembership(Membership{ChannelID: "c2", UserID: "u1", Role: Banned, Accepted: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := g.EffectiveRole("u1", "c2"); ok {
		t.Fatalf("ban at target must block access even with an inherited Admin role")
	}
	// The ban must not propagate upward: u1 is still Admin on c1.
	role, ok, err := g.EffectiveRole("u1", "c1")
	if err != nil || !ok || role != Admin {
		t.Fatalf("ban on c2 should not affect c1, got role=%v ok=%v err=%v", role, ok, err)
	}
}

func TestDescendantsUnion(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	mustAddChild(t, g, "c2", "c1", Members)
	mustAddChild(t, g, "c3", "c2", Members)
	mustAddRoot(t, g, "other", Members)

	desc := g.Descendants([]ChannelID{"c1"})
	ids := map[ChannelID]bool{}
	for _, c := range desc {
		ids[c.ID] = true
	}
	if !ids["c1"] || !ids["c2"] || !ids["c3"] || ids["other"] {
		t.Fatalf("descendants of c1 = %v, want {c1,c2,c3}", ids)
	}
}

func TestMoveCycleGuard(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	mustAddChild(t, g, "c2", "c1", Members)

	isDesc, err := g.IsDescendantOrSelf("c1", "c2")
	if err != nil || !isDesc {
		t.Fatalf("c2 should be a descendant of c1: ok=%v err=%v", isDesc, err)
	}
}

func TestMoveSubtreeRewritesDescendantPaths(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "c1", Members)
	mustAddChild(t, g, "c2", "c1", Members)
	mustAddChild(t, g, "c3", "c2", Members)
	mustAddRoot(t, g, "newroot", Members)

	newRoot, _ := g.GetChannel("newroot")
	if err := g.MoveSubtree("c2", newRoot.FullPath()); err != nil {
		t.Fatalf("move subtree: %v", err)
	}
	c2, _ := g.GetChannel("c2")
	if c2.ParentPath != newRoot.FullPath() {
		t.Fatalf("c2.ParentPath = %q, want %q", c2.ParentPath, newRoot.FullPath())
	}
	c3, _ := g.GetChannel("c3")
	wantC3Prefix := newRoot.FullPath() + "c2/"
	if c3.ParentPath != wantC3Prefix {
		t.Fatalf("c3.ParentPath = %q, want %q", c3.ParentPath, wantC3Prefix)
	}
}

func TestNearestPublicAncestor(t *testing.T) {
	g := New()
	mustAddRoot(t, g, "pub", Public)
	mustAddChild(t, g, "child", "pub", Public)

	id, ok, err := g.NearestPublicAncestor("child")
	if err != nil || !ok || id != "pub" {
		t.Fatalf("id=%v ok=%v err=%v, want pub", id, ok, err)
	}
}
