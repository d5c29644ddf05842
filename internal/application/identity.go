package application

// Identity is the already-verified owner claim attached to a request. It is
// passed explicitly into every owner-scoped operation.
type Identity struct {
	AccountID string
	Handle    string
}

// owns reports whether the identity is the owner of accountID.
func (id Identity) owns(accountID string) bool {
	return id.AccountID != "" && id.AccountID == accountID
}
