package application

import (
	"context"
	"errors"
	"slices"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// InboxService exposes an account's messages to its owner only.
type InboxService struct {
	inbox driven.InboxStore
}

// NewInboxService creates an InboxService.
func NewInboxService(inbox driven.InboxStore) *InboxService {
	return &InboxService{inbox: inbox}
}

// List returns accountID's messages newest-first. The store keeps insertion
// order; the reversal here is presentation only.
func (s *InboxService) List(ctx context.Context, who Identity, accountID string) ([]model.Message, error) {
	if !who.owns(accountID) {
		return nil, ErrForbidden
	}

	msgs, err := s.inbox.List(ctx, accountID)
	if err != nil {
		return nil, storageFailure("list inbox", err)
	}

	slices.Reverse(msgs)
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// Delete permanently removes one message from accountID's inbox. Returns
// ErrForbidden for non-owners and ErrNotFound when no such message exists.
func (s *InboxService) Delete(ctx context.Context, who Identity, accountID, messageID string) error {
	if !who.owns(accountID) {
		return ErrForbidden
	}

	err := s.inbox.Delete(ctx, accountID, messageID)
	if errors.Is(err, driven.ErrMessageNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storageFailure("delete message", err)
	}
	return nil
}
