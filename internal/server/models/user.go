package models

import "time"

// Account lifecycle states stored in users.status.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User is a registered mailbox owner. Token is the opaque bearer secret
// generated at registration; it never changes for the lifetime of the row.
type User struct {
	ID        string
	Email     string
	Token     string
	CreatedAt time.Time
	LastLogin *time.Time
	Status    string
}
