package domain

import "time"

// Comment is an entry in a ticket's discussion thread. Comments never
// change ticket status.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time

	AuthorName string
}

// Attachment stores metadata for a file attached to a ticket. The binary
// itself lives in external storage under StorageKey.
type Attachment struct {
	ID         string
	TicketID   string
	UploaderID string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
