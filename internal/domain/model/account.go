package model

import "time"

// Account is a registered recipient. Handle and ContactAddress are each
// globally unique. CredentialHash is an opaque bcrypt hash and must never
// leave the account service.
type Account struct {
	ID                string
	Handle            string
	ContactAddress    string
	CredentialHash    string
	AcceptingMessages bool
	Verification      VerificationState
	CreatedAt         time.Time
}

// IsVerified returns true once the account has completed verification.
func (a Account) IsVerified() bool {
	return a.Verification == VerificationVerified
}

// Summary returns the public-safe projection of the account used by the
// recipient directory.
func (a Account) Summary() RecipientSummary {
	return RecipientSummary{
		AccountID:         a.ID,
		Handle:            a.Handle,
		AcceptingMessages: a.AcceptingMessages,
		Verified:          a.IsVerified(),
	}
}

// RecipientSummary is what the recipient directory hands downstream: enough
// to gate and route a message, nothing that identifies credentials or contact.
type RecipientSummary struct {
	AccountID         string
	Handle            string
	AcceptingMessages bool
	Verified          bool
}

// CanReceive reports whether a new inbound message may be delivered.
func (s RecipientSummary) CanReceive() bool {
	return s.Verified && s.AcceptingMessages
}
