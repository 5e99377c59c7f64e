package game

import (
	"errors"
	"fmt"
)

// GameError is a custom error type for service construction errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig            GameError = "config cannot be nil"
	ErrNilSessionRepo       GameError = "session repository cannot be nil"
	ErrNilCombatRepo        GameError = "combat repository cannot be nil"
	ErrNilEventRepo         GameError = "event repository cannot be nil"
	ErrNilCharacterRepo     GameError = "character repository cannot be nil"
	ErrNilStoryProvider     GameError = "story provider cannot be nil"
	ErrNilDiceRoller        GameError = "dice roller cannot be nil"
	ErrNilClock             GameError = "clock cannot be nil"
	ErrNilUUIDGenerator     GameError = "UUID generator cannot be nil"
	ErrNilJoinCodeGenerator GameError = "join code generator cannot be nil"
)

// Kind is the closed set of failure categories an operation can report
type Kind string

const (
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindForbidden     Kind = "FORBIDDEN"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindInvalidState  Kind = "INVALID_STATE"
	KindInvalidParams Kind = "INVALID_PARAMS"
	KindInternal      Kind = "INTERNAL"
)

// Error is the typed failure returned by every operation
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf reports the kind of err. Anything that is not an *Error counts as Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
