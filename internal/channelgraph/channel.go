package channelgraph

import "strings"

// ChannelID uniquely identifies a channel.
type ChannelID string

// UserID uniquely identifies a user.
type UserID string

// Visibility controls whether a channel is visible to non-members.
type Visibility int

const (
	// Members restricts a channel to its accepted members and their
	// ancestors' members.
	Members Visibility = iota
	// Public allows any user who can see a public ancestor to join as
	// a Guest.
	Public
)

// String implements fmt.Stringer.
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "members"
}

// Channel is a node in the channel hierarchy.
type Channel struct {
	ID         ChannelID
	Name       string
	Visibility Visibility
	// ParentPath is the ordered list of ancestor ids, root-first,
	// serialized the way the teacher's path index keys nodes: joined
	// by "/" with a trailing separator so a prefix match on
	// ParentPath+ID+"/" finds exactly the descendants (spec §3.4).
	ParentPath string
	// RequiresZedCLA is carried per REDESIGN note (c) but never
	// consulted by any operation in this core.
	RequiresZedCLA bool
}

// FullPath returns ParentPath with this channel's own id appended and
// trailing-slash terminated, the prefix a descendant's ParentPath must
// start with.
func (c Channel) FullPath() string {
	return c.ParentPath + string(c.ID) + "/"
}

// Depth returns the number of ancestors (0 for a root channel).
func (c Channel) Depth() int {
	if c.ParentPath == "" {
		return 0
	}
	return strings.Count(c.ParentPath, "/")
}

// AncestorIDs returns the ordered, root-first list of ancestor ids
// encoded in ParentPath.
func (c Channel) AncestorIDs() []ChannelID {
	if c.ParentPath == "" {
		return nil
	}
	parts := strings.Split(strings.Trim(c.ParentPath, "/"), "/")
	ids := make([]ChannelID, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			ids = append(ids, ChannelID(p))
		}
	}
	return ids
}

// ParentID returns the immediate parent, or "" if this is a root.
func (c Channel) ParentID() ChannelID {
	ancestors := c.AncestorIDs()
	if len(ancestors) == 0 {
		return ""
	}
	return ancestors[len(ancestors)-1]
}

// IsDescendantPath reports whether a channel whose ParentPath is
// childParentPath lies strictly below the channel whose full path is
// ancestorFullPath; the ancestor itself does not match.
func IsDescendantPath(ancestorFullPath, childParentPath string) bool {
	return strings.HasPrefix(childParentPath, ancestorFullPath)
}

// Role is a membership role. Roles form the total order used for
// maximization across ancestor rows (spec §4.5): Admin > Member >
// Guest. Banned is not part of that order; it is a per-node veto and
// is never the result of a max() computation, only a direct lookup.
type Role int

const (
	// Guest confers participation only when both the row's channel and
	// the target channel are Public; channels in between are not
	// consulted.
	Guest Role = iota
	// Member sees all descendants of the channel the row is stored on.
	Member
	// Admin sees all descendants and may mutate the subtree.
	Admin
	// Banned overrides sibling rows at the exact channel it is stored
	// on. It never propagates upward and is never returned by role
	// maximization across ancestors.
	Banned
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Member:
		return "member"
	case Admin:
		return "admin"
	case Banned:
		return "banned"
	default:
		return "unknown"
	}
}

// rank orders Admin > Member > Guest for maximization. Banned has no
// rank; callers must special-case it before calling max.
func (r Role) rank() int {
	switch r {
	case Admin:
		return 2
	case Member:
		return 1
	default:
		return 0
	}
}

// maxRole returns the higher-ranked of a, b by the Admin > Member >
// Guest order. Neither argument may be Banned.
func maxRole(a, b Role) Role {
	if a.rank() >= b.rank() {
		return a
	}
	return b
}

// ParseRole parses a role name, used when an RPC request carries a
// role as a string (spec §7: InvalidArgument on unknown role).
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(s) {
	case "admin":
		return Admin, true
	case "member":
		return Member, true
	case "guest":
		return Guest, true
	case "banned":
		return Banned, true
	default:
		return 0, false
	}
}

// Membership is a direct row linking a user to a channel.
type Membership struct {
	ChannelID ChannelID
	UserID    UserID
	Role      Role
	Accepted  bool
}
