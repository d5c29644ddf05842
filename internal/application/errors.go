package application

import (
	"errors"
	"fmt"
)

// Expected, user-facing outcomes. Callers match them with errors.Is.
var (
	ErrInvalidContent   = errors.New("invalid content")
	ErrUnknownRecipient = errors.New("unknown recipient")
	ErrNotAccepting     = errors.New("recipient is not accepting messages")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
)

// Infrastructure faults. Reported generically; details stay in the logs.
var (
	ErrSuggestionUnavailable = errors.New("suggestions unavailable")
	ErrStorageFailure        = errors.New("storage failure")
)

// Account lifecycle outcomes.
var (
	ErrInvalidSignUp      = errors.New("invalid sign-up request")
	ErrHandleTaken        = errors.New("handle is already taken")
	ErrContactTaken       = errors.New("an account already exists with this contact address")
	ErrInvalidCredentials = errors.New("incorrect handle or password")
	ErrNotVerified        = errors.New("account is not verified")
)

// Stable reason codes reported to clients.
const (
	CodeInvalidContent        = "invalid_content"
	CodeUnknownRecipient      = "unknown_recipient"
	CodeNotAccepting          = "not_accepting"
	CodeForbidden             = "forbidden"
	CodeNotFound              = "not_found"
	CodeSuggestionUnavailable = "suggestion_unavailable"
	CodeStorageFailure        = "storage_failure"
)

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidContent, CodeInvalidContent},
	{ErrUnknownRecipient, CodeUnknownRecipient},
	{ErrNotAccepting, CodeNotAccepting},
	{ErrForbidden, CodeForbidden},
	{ErrNotFound, CodeNotFound},
	{ErrSuggestionUnavailable, CodeSuggestionUnavailable},
	{ErrStorageFailure, CodeStorageFailure},
}

// ReasonCode maps an error from this package to its stable reason code.
// Unrecognised errors are reported as storage failures.
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return CodeStorageFailure
}

// storageFailure wraps a persistence-layer fault so callers can match
// ErrStorageFailure while the original cause stays available for logging.
func storageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}
