package application

import (
	"context"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Verifier = ImmediateVerifier{}

// ImmediateVerifier approves every pending account without a challenge.
// Selecting it is an explicit deployment choice; the pending → verified
// transition still happens through the account service.
type ImmediateVerifier struct{}

// Verify always approves.
func (ImmediateVerifier) Verify(_ context.Context, _ model.Account) (bool, error) {
	return true, nil
}
