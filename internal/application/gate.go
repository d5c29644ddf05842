package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// AcceptanceGate decides whether a recipient may currently receive messages
// and lets the owner flip that decision. It never caches: every call reads
// through to the account store.
type AcceptanceGate struct {
	directory *Directory
	accounts  driven.AccountStore
	logger    *slog.Logger
}

// NewAcceptanceGate creates an AcceptanceGate.
func NewAcceptanceGate(directory *Directory, accounts driven.AccountStore, logger *slog.Logger) *AcceptanceGate {
	return &AcceptanceGate{
		directory: directory,
		accounts:  accounts,
		logger:    logger,
	}
}

// Admits is the pure decision over an already resolved recipient.
func (g *AcceptanceGate) Admits(recipient model.RecipientSummary) bool {
	return recipient.CanReceive()
}

// CanReceive reports whether handle resolves to a verified account that is
// accepting messages. Unknown handles and lookup failures yield false.
func (g *AcceptanceGate) CanReceive(ctx context.Context, handle string) bool {
	recipient, err := g.directory.Resolve(ctx, handle)
	if err != nil {
		if !errors.Is(err, ErrUnknownRecipient) {
			g.logger.Error("acceptance lookup failed", "error", err)
		}
		return false
	}
	return g.Admits(*recipient)
}

// Status returns the owner's current acceptance latch.
func (g *AcceptanceGate) Status(ctx context.Context, who Identity, accountID string) (bool, error) {
	if !who.owns(accountID) {
		return false, ErrForbidden
	}

	account, err := g.accounts.GetByID(ctx, accountID)
	if errors.Is(err, driven.ErrAccountNotFound) {
		return false, ErrUnknownRecipient
	}
	if err != nil {
		return false, storageFailure("read acceptance", err)
	}

	return account.AcceptingMessages, nil
}

// Toggle sets the acceptance latch of accountID to requested and returns the
// new state. Only the owner may toggle. Setting the current value again is a
// successful no-op. The write is visible to the next CanReceive.
func (g *AcceptanceGate) Toggle(ctx context.Context, who Identity, accountID string, requested bool) (bool, error) {
	if !who.owns(accountID) {
		return false, ErrForbidden
	}

	err := g.accounts.SetAccepting(ctx, accountID, requested)
	if errors.Is(err, driven.ErrAccountNotFound) {
		return false, ErrUnknownRecipient
	}
	if err != nil {
		return false, storageFailure("toggle acceptance", err)
	}

	g.logger.Info("acceptance updated", "account_id", accountID, "accepting", requested)
	return requested, nil
}
