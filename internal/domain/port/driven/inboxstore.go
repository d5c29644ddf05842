package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// Sentinel errors returned by InboxStore implementations.
var (
	// ErrRecipientClosed indicates the conditional append found the
	// recipient missing, unverified, or not accepting at write time.
	ErrRecipientClosed = errors.New("recipient not accepting messages")

	// ErrMessageNotFound indicates no message with that id exists in the inbox.
	ErrMessageNotFound = errors.New("message not found")
)

// InboxStore defines the driven port for per-account message logs.
// Append is the only mutation that creates messages; concurrent appends to
// the same account must both land, in some insertion order, and never
// overwrite each other.
type InboxStore interface {
	// Append atomically checks that the owning account is verified and
	// accepting and inserts the message. Returns ErrRecipientClosed if the
	// check fails; in that case nothing is written.
	Append(ctx context.Context, msg model.Message) error

	// List returns the account's messages in insertion order.
	List(ctx context.Context, accountID string) ([]model.Message, error)

	// Delete removes one message. Returns ErrMessageNotFound if the account
	// has no message with that id.
	Delete(ctx context.Context, accountID, messageID string) error
}
