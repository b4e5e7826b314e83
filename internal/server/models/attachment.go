package models

import "time"

// Attachment is metadata for a message attachment. The bytes themselves live
// in object storage under StorageKey; downloads are served as presigned URLs.
type Attachment struct {
	ID         string
	MessageID  string
	UserID     string
	FileName   string
	Size       int64
	StorageKey string
	CreatedAt  time.Time
}
