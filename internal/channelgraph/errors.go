package channelgraph

import "errors"

// Sentinel errors, mirroring internal/project/errors.go's pattern:
// package-level errors.New values checked with errors.Is, never a
// bespoke error-framework type.
var (
	// ErrNoSuchChannel indicates the referenced channel does not exist.
	ErrNoSuchChannel = errors.New("no such channel")
	// ErrNoSuchMember indicates no membership row exists for the user.
	ErrNoSuchMember = errors.New("no such member")
	// ErrNoSuchInvitation indicates no pending invitation exists.
	ErrNoSuchInvitation = errors.New("no such invitation")
	// ErrForbidden indicates insufficient role or an explicit ban.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument indicates a malformed request (empty name,
	// move cycle, unknown role).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict indicates a retriable database serialization
	// conflict (spec §7); channelgraph itself never raises this, but
	// the Kind() mapping recognizes it for callers that wrap pgx
	// serialization failures with it.
	ErrConflict = errors.New("conflict")
	// ErrInternal indicates an invariant violation that should crash
	// in debug builds and be logged + reported generically in release.
	ErrInternal = errors.New("internal error")
	// ErrAlreadyMember indicates a direct membership row already
	// exists for this (channel, user) pair (spec §3.4: "a user cannot
	// hold two direct membership rows on the same channel").
	ErrAlreadyMember = errors.New("user already has a direct membership row on this channel")
)

// ErrorKind classifies an error the way spec §7 enumerates them, for
// callers (the RPC edge) that need to map an error to a wire code
// without string-matching.
type ErrorKind int

const (
	// KindUnknown is returned for errors this package did not produce.
	KindUnknown ErrorKind = iota
	KindNoSuchChannel
	KindNoSuchMember
	KindNoSuchInvitation
	KindForbidden
	KindInvalidArgument
	KindWrongReleaseChannel
	KindConflict
	KindInternal
)

// Kind classifies err per spec §7's error kind list. It unwraps wrapped
// errors via errors.Is, so callers can use fmt.Errorf("...: %w", err)
// freely without losing the classification.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, new(*WrongReleaseChannelError)):
		return KindWrongReleaseChannel
	case errors.Is(err, ErrNoSuchChannel):
		return KindNoSuchChannel
	case errors.Is(err, ErrNoSuchMember):
		return KindNoSuchMember
	case errors.Is(err, ErrNoSuchInvitation):
		return KindNoSuchInvitation
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrAlreadyMember):
		return KindInvalidArgument
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInternal):
		return KindInternal
	default:
		return KindUnknown
	}
}

// WrongReleaseChannelError is the one error kind that carries a
// payload (spec §6.1: WrongReleaseChannel { required_env }), raised
// when an existing room's environment does not match the joining
// client's.
type WrongReleaseChannelError struct {
	Required string
}

// Error implements the error interface.
func (e *WrongReleaseChannelError) Error() string {
	return "wrong release channel, requires " + e.Required
}
