package models

import "time"

// Message is a single mailbox entry. Outbound messages created by Send are
// stored with the owner's address as Sender.
type Message struct {
	ID        string
	UserID    string
	Sender    string
	Recipient string
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}
