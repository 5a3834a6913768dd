package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	DepartmentID string                `json:"department_id"`
	ReasonID     string                `json:"reason_id"`
	Priority     domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest payload; absent fields are untouched.
type UpdateTicketRequest struct {
	Status         *domain.TicketStatus   `json:"status"`
	Priority       *domain.TicketPriority `json:"priority"`
	AssignedTo     *string                `json:"assigned_to"`
	DeletionReason *string                `json:"deletion_reason"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CreateAttachmentRequest describes attachment metadata; the binary is
// uploaded to storage out of band.
type CreateAttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// MoveCardRequest carries a board drag event.
type MoveCardRequest struct {
	TargetColumn   domain.TicketStatus `json:"target_column"`
	DeletionReason *string             `json:"deletion_reason"`
}

// SLAStatusResponse mirrors the evaluator result.
type SLAStatusResponse struct {
	Kind             string `json:"kind"`
	RemainingSeconds *int64 `json:"remaining_seconds,omitempty"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	DepartmentID    string                `json:"department_id"`
	DepartmentName  string                `json:"department_name"`
	ReasonID        string                `json:"reason_id"`
	ReasonName      string                `json:"reason_name"`
	CreatorName     string                `json:"creator_name"`
	AssignedTo      *string               `json:"assigned_to"`
	AssigneeName    *string               `json:"assignee_name"`
	SLAResponseAt   *time.Time            `json:"sla_response_at"`
	SLAResolutionAt *time.Time            `json:"sla_resolution_at"`
	SLA             SLAStatusResponse     `json:"sla"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description    string               `json:"description"`
	DeletionReason *string              `json:"deletion_reason,omitempty"`
	RespondedAt    *time.Time           `json:"responded_at,omitempty"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	FinishedAt     *time.Time           `json:"finished_at,omitempty"`
	Comments       []CommentResponse    `json:"comments"`
	Attachments    []AttachmentResponse `json:"attachments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketEventResponse is an audit entry.
type TicketEventResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorID    *string                 `json:"actor_id,omitempty"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// BoardColumnResponse is one Kanban lane.
type BoardColumnResponse struct {
	Status domain.TicketStatus `json:"status"`
	Cards  []TicketSummary     `json:"cards"`
}

// BoardResponse is the full board.
type BoardResponse struct {
	Columns     []BoardColumnResponse `json:"columns"`
	GeneratedAt time.Time             `json:"generated_at"`
}
