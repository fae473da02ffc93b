package services

import (
	"errors"
	"fmt"

	"github.com/Dias221467/cf_social/internal/codeforces"
	"github.com/Dias221467/cf_social/internal/repository"
)

// ErrorKind is the machine-readable class of a service failure.
type ErrorKind string

const (
	KindNotAuthenticated    ErrorKind = "NotAuthenticated"
	KindTargetNotFound      ErrorKind = "TargetNotFound"
	KindAlreadyFollowing    ErrorKind = "AlreadyFollowing"
	KindAlreadyRequested    ErrorKind = "AlreadyRequested"
	KindRequestNotFound     ErrorKind = "RequestNotFound"
	KindProviderUnavailable ErrorKind = "ProviderUnavailable"
	KindStoreUnavailable    ErrorKind = "StoreUnavailable"
	KindCannotFollowSelf    ErrorKind = "CannotFollowSelf"
	KindInvalidInput        ErrorKind = "InvalidInput"
	KindUserExists          ErrorKind = "UserExists"
	KindInvalidCredentials  ErrorKind = "InvalidCredentials"
	KindHandleNotFound      ErrorKind = "HandleNotFound"
	KindInternal            ErrorKind = "Internal"
)

// Error is returned by every service operation that fails.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrTargetNotFound)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotAuthenticated    = &Error{Kind: KindNotAuthenticated, Message: "authentication required"}
	ErrTargetNotFound      = &Error{Kind: KindTargetNotFound, Message: "user not found"}
	ErrAlreadyFollowing    = &Error{Kind: KindAlreadyFollowing, Message: "already following this user"}
	ErrAlreadyRequested    = &Error{Kind: KindAlreadyRequested, Message: "follow request already sent"}
	ErrRequestNotFound     = &Error{Kind: KindRequestNotFound, Message: "follow request not found"}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable, Message: "rating provider unavailable"}
	ErrStoreUnavailable    = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
	ErrCannotFollowSelf    = &Error{Kind: KindCannotFollowSelf, Message: "cannot follow yourself"}
	ErrUserExists          = &Error{Kind: KindUserExists, Message: "user already exists"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Message: "invalid username or password"}
	ErrHandleNotFound      = &Error{Kind: KindHandleNotFound, Message: "codeforces handle not found"}
)

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func invalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// storeError classifies a repository error. A missing user becomes
// TargetNotFound; anything else is a store failure, never "not found".
func storeError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return newError(KindTargetNotFound, "user not found", err)
	default:
		return newError(KindStoreUnavailable, msg, err)
	}
}

// providerError classifies a rating provider error.
func providerError(err error) error {
	if errors.Is(err, codeforces.ErrHandleNotFound) {
		return newError(KindHandleNotFound, "codeforces handle not found", err)
	}
	return newError(KindProviderUnavailable, "rating provider unavailable", err)
}
