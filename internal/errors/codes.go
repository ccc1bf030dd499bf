// Package errors provides the error kinds shared by the game core and its collaborators.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error code.
type Kind string

const (
	KindUnknown Kind = "UNKNOWN"

	// Game rule violations
	KindPhaseViolation     Kind = "PHASE_VIOLATION"
	KindDuplicateRoster    Kind = "DUPLICATE_ROSTER"
	KindRosterFull         Kind = "ROSTER_FULL"
	KindNotAMember         Kind = "NOT_A_MEMBER"
	KindAlreadyDrafted     Kind = "ALREADY_DRAFTED"
	KindDeadEntityRejected Kind = "DEAD_ENTITY_REJECTED"
	KindOutOfTurn          Kind = "OUT_OF_TURN"
	KindNotCreator         Kind = "NOT_CREATOR"
	KindNoTeam             Kind = "NO_TEAM"
	KindNoTeams            Kind = "NO_TEAMS"

	// Session lookup errors
	KindNoActiveGame      Kind = "NO_ACTIVE_GAME"
	KindGameAlreadyActive Kind = "GAME_ALREADY_ACTIVE"
	KindNotAdmin          Kind = "NOT_ADMIN"

	// Entity resolution errors
	KindAmbiguousLookup     Kind = "AMBIGUOUS_LOOKUP"
	KindLookupNotFound      Kind = "LOOKUP_NOT_FOUND"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
)

// Error is a domain error carrying a Kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error with the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsDomain reports whether err is a recoverable rule violation that should be shown to the user as is.
func IsDomain(err error) bool {
	switch KindOf(err) {
	case "", KindUnknown, KindUpstreamUnavailable:
		return false
	default:
		return true
	}
}

var (
	ErrPhaseViolation      = &Error{Kind: KindPhaseViolation}
	ErrRosterFull          = &Error{Kind: KindRosterFull}
	ErrNotAMember          = &Error{Kind: KindNotAMember}
	ErrAlreadyDrafted      = &Error{Kind: KindAlreadyDrafted}
	ErrDeadEntityRejected  = &Error{Kind: KindDeadEntityRejected}
	ErrOutOfTurn           = &Error{Kind: KindOutOfTurn}
	ErrNoTeam              = &Error{Kind: KindNoTeam}
	ErrNoTeams             = &Error{Kind: KindNoTeams}
	ErrAmbiguousLookup     = &Error{Kind: KindAmbiguousLookup}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
)
