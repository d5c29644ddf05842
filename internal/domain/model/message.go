package model

import "time"

// Message is an anonymous note in exactly one account's inbox. It is never
// mutated after intake. Seq is the store-assigned insertion position within
// the owning inbox.
type Message struct {
	ID        string
	AccountID string
	Content   string
	CreatedAt time.Time
	Seq       int64
}
