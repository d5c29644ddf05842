package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// Sentinel errors returned by AccountStore implementations.
var (
	// ErrAccountNotFound indicates no account matches the lookup key.
	ErrAccountNotFound = errors.New("account not found")

	// ErrHandleExists indicates the handle is already registered.
	ErrHandleExists = errors.New("handle already exists")

	// ErrContactExists indicates the contact address is already registered.
	ErrContactExists = errors.New("contact address already exists")
)

// AccountStore defines the driven port for account-document persistence.
// Every read reflects the latest committed write; implementations must not
// cache acceptance state.
type AccountStore interface {
	// Create inserts a new account. Returns ErrHandleExists or
	// ErrContactExists on a uniqueness violation.
	Create(ctx context.Context, account model.Account) error

	// GetByHandle performs an exact-match lookup. Returns ErrAccountNotFound
	// when absent.
	GetByHandle(ctx context.Context, handle string) (*model.Account, error)

	// GetByID returns ErrAccountNotFound when absent.
	GetByID(ctx context.Context, id string) (*model.Account, error)

	// GetByContact returns ErrAccountNotFound when absent.
	GetByContact(ctx context.Context, contact string) (*model.Account, error)

	// SetAccepting sets the acceptance latch. Returns ErrAccountNotFound when absent.
	SetAccepting(ctx context.Context, id string, accepting bool) error

	// SetVerification moves the account to the given verification state.
	SetVerification(ctx context.Context, id string, state model.VerificationState) error

	// ReplaceCredential overwrites the credential hash of an existing account.
	ReplaceCredential(ctx context.Context, id, credentialHash string) error
}
