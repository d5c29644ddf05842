package driven

import (
	"context"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// Verifier decides whether a pending account may transition to verified.
// A verifier that approves immediately is a valid configuration.
type Verifier interface {
	Verify(ctx context.Context, account model.Account) (bool, error)
}
