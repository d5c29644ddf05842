package model

// VerificationState tracks an account's progress towards being able to
// receive messages.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
)

// Valid returns true for the known verification states.
func (s VerificationState) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified:
		return true
	}
	return false
}
