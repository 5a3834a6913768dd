package domain

import "time"

// TicketStatus enumerates the Kanban columns a ticket can occupy.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusPartiallyResolved TicketStatus = "partially_resolved"
	TicketStatusResolved          TicketStatus = "resolved"
	TicketStatusFinished          TicketStatus = "finished"
	TicketStatusDeleted           TicketStatus = "deleted"
)

// AllStatuses lists the six Kanban columns in board order.
var AllStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPartiallyResolved,
	TicketStatusResolved,
	TicketStatusFinished,
	TicketStatusDeleted,
}

// Known reports whether the value is one of the six columns.
func (s TicketStatus) Known() bool {
	for _, candidate := range AllStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the status permits no further mutation.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusFinished || s == TicketStatusDeleted
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityUrgent TicketPriority = "urgent"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityLow    TicketPriority = "low"
)

// Known reports whether the value is a recognized priority.
func (p TicketPriority) Known() bool {
	switch p {
	case TicketPriorityUrgent, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. SLAResponseAt and
// SLAResolutionAt are fixed at creation from the reason's policy and are
// never recomputed, even when priority changes later.
type Ticket struct {
	ID              string
	ExternalKey     string
	CreatorID       string
	DepartmentID    string
	ReasonID        string
	AssignedTo      *string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	DeletionReason  *string
	SLAResponseAt   *time.Time
	SLAResolutionAt *time.Time
	RespondedAt     *time.Time
	ResolvedAt      *time.Time
	FinishedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Labels joined by the listing query.
	DepartmentName string
	ReasonName     string
	CreatorName    string
	AssigneeName   *string
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:              {TicketStatusInProgress, TicketStatusDeleted},
	TicketStatusInProgress:        {TicketStatusPartiallyResolved, TicketStatusDeleted},
	TicketStatusPartiallyResolved: {TicketStatusResolved, TicketStatusDeleted},
	TicketStatusResolved:          {TicketStatusFinished, TicketStatusDeleted},
	TicketStatusFinished:          {},
	TicketStatusDeleted:           {},
}

// CanTransition reports whether a ticket may move from current to next.
// The workflow is forward-only; deleted is reachable from any non-terminal
// state; terminal states permit nothing.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
