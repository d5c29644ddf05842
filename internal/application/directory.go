package application

import (
	"context"
	"errors"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// Directory resolves public handles to recipient summaries. It is read-only.
type Directory struct {
	accounts driven.AccountStore
}

// NewDirectory creates a Directory backed by the given account store.
func NewDirectory(accounts driven.AccountStore) *Directory {
	return &Directory{accounts: accounts}
}

// Resolve performs an exact-match lookup on handle. Returns
// ErrUnknownRecipient when no account holds the handle.
func (d *Directory) Resolve(ctx context.Context, handle string) (*model.RecipientSummary, error) {
	if handle == "" {
		return nil, ErrUnknownRecipient
	}

	account, err := d.accounts.GetByHandle(ctx, handle)
	if errors.Is(err, driven.ErrAccountNotFound) {
		return nil, ErrUnknownRecipient
	}
	if err != nil {
		return nil, storageFailure("resolve handle", err)
	}

	summary := account.Summary()
	return &summary, nil
}
