package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventTicketAttachmentAdded EventType = "ticket_attachment_added"
	EventTicketSLABreached     EventType = "ticket_sla_breached"
	EventBoardRefreshed        EventType = "board_refreshed"
)

// Event represents a domain event emitted by the store and workers.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID    string                `json:"department_id"`
	ReasonID        string                `json:"reason_id"`
	Priority        domain.TicketPriority `json:"priority"`
	Title           string                `json:"title"`
	SLAResponseAt   *time.Time            `json:"sla_response_at,omitempty"`
	SLAResolutionAt *time.Time            `json:"sla_resolution_at,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus      domain.TicketStatus `json:"old_status"`
	NewStatus      domain.TicketStatus `json:"new_status"`
	DeletionReason *string             `json:"deletion_reason,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	ContentPreview string `json:"content_preview"`
}

// TicketAttachmentAddedPayload payload.
type TicketAttachmentAddedPayload struct {
	AttachmentID string `json:"attachment_id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// TicketSLABreachedPayload payload.
type TicketSLABreachedPayload struct {
	Kind     string                `json:"kind"`
	Priority domain.TicketPriority `json:"priority"`
	Deadline time.Time             `json:"deadline"`
}

// BoardRefreshedPayload payload.
type BoardRefreshedPayload struct {
	TicketCount int `json:"ticket_count"`
}
