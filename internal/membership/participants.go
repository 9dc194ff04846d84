package membership

import (
	"fmt"

	"github.com/dshills/collabcore/internal/channelgraph"
)

// GetChannelParticipantDetails implements spec §4.5's "Participant
// details" algorithm: it streams every membership row on ch's
// ancestor-or-self chain, classifies each, filters by the viewer's
// visibility, and deduplicates per user preferring the more specific
// kind.
func (e *Engine) GetChannelParticipantDetails(ch channelgraph.ChannelID, viewer channelgraph.UserID) ([]ParticipantDetail, error) {
	viewerRole, ok, err := e.graph.EffectiveRole(viewer, ch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("participant details on %s: %w", ch, channelgraph.ErrForbidden)
	}
	viewerIsAdmin := viewerRole == channelgraph.Admin

	target, ok := e.graph.GetChannel(ch)
	if !ok {
		return nil, fmt.Errorf("participant details: %w", channelgraph.ErrNoSuchChannel)
	}
	chain := append(target.AncestorIDs(), ch) // root-first, ch last

	type candidate struct {
		detail ParticipantDetail
		// specificity: higher wins on dedup (Member/Invitee > AncestorMember).
		specificity int
	}
	best := make(map[channelgraph.UserID]candidate)

	for _, chID := range chain {
		isSelf := chID == ch
		node, ok := e.graph.GetChannel(chID)
		if !ok {
			continue
		}
		for _, m := range e.graph.MembershipsForChannel(chID) {
			if m.Role == channelgraph.Banned {
				continue
			}
			if m.Role == channelgraph.Guest {
				// Skip Guest rows unless both the row's own channel and
				// ch itself are Public (step 4): the two endpoints,
				// AND-combined, same rule as channelgraph.EffectiveRole.
				if node.Visibility != channelgraph.Public || target.Visibility != channelgraph.Public {
					continue
				}
			}

			var kind ParticipantKind
			specificity := 0
			switch {
			case isSelf && m.Accepted:
				kind, specificity = KindMember, 3
			case isSelf && !m.Accepted:
				kind, specificity = KindInvitee, 2
			case !isSelf && m.Accepted:
				kind, specificity = KindAncestorMember, 1
			default:
				// Pending invite on a strict ancestor does not confer
				// anything on a descendant; skip.
				continue
			}
			if kind == KindInvitee && !viewerIsAdmin {
				// Non-admin viewers never see Invitee entries (step 6).
				continue
			}

			cand := candidate{
				detail: ParticipantDetail{
					UserID:     m.UserID,
					Role:       m.Role,
					Kind:       kind,
					SourceChan: chID,
				},
				specificity: specificity,
			}
			prev, exists := best[m.UserID]
			if !exists {
				best[m.UserID] = cand
				continue
			}
			if cand.specificity > prev.specificity {
				best[m.UserID] = cand
				continue
			}
			if cand.specificity == prev.specificity && rolePreferred(cand.detail.Role, prev.detail.Role) {
				best[m.UserID] = cand
			}
		}
	}

	out := make([]ParticipantDetail, 0, len(best))
	for _, c := range best {
		out = append(out, c.detail)
	}
	return out, nil
}

// rolePreferred reports whether a should replace b when both rows tie
// on specificity (step 5: "preferring higher role").
func rolePreferred(a, b channelgraph.Role) bool {
	rank := func(r channelgraph.Role) int {
		switch r {
		case channelgraph.Admin:
			return 3
		case channelgraph.Member:
			return 2
		case channelgraph.Guest:
			return 1
		default:
			return 0
		}
	}
	return rank(a) > rank(b)
}

// collectParticipants returns the distinct users with any accepted
// access to ch or any of its descendants, used by rename/delete to
// compute "all participants to notify". It is a coarser, admin's-eye
// view of the same ancestor/descendant walk GetChannelParticipantDetails
// does for a single channel from one viewer's perspective.
func (e *Engine) collectParticipants(ch channelgraph.ChannelID) []channelgraph.UserID {
	seen := make(map[channelgraph.UserID]bool)
	var out []channelgraph.UserID
	add := func(u channelgraph.UserID) {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	node, ok := e.graph.GetChannel(ch)
	if !ok {
		return nil
	}
	for _, id := range append(node.AncestorIDs(), ch) {
		for _, m := range e.graph.MembershipsForChannel(id) {
			if m.Accepted && m.Role != channelgraph.Banned {
				add(m.UserID)
			}
		}
	}
	for _, d := range e.graph.Descendants([]channelgraph.ChannelID{ch}) {
		for _, m := range e.graph.MembershipsForChannel(d.ID) {
			if m.Accepted && m.Role != channelgraph.Banned {
				add(m.UserID)
			}
		}
	}
	return out
}
