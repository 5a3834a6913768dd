package domain

import "time"

// TicketChangeType captures what changed in an audit entry.
type TicketChangeType string

const (
	ChangeTypeCreated    TicketChangeType = "CREATED"
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypePriority   TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeAssignee   TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeComment    TicketChangeType = "COMMENT_ADDED"
	ChangeTypeAttachment TicketChangeType = "ATTACHMENT_ADDED"
)

// TicketEvent is an immutable audit trail entry.
type TicketEvent struct {
	ID         string
	TicketID   string
	ActorID    *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
