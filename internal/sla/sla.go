// Package sla computes and evaluates service-level deadlines for tickets.
package sla

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Kind classifies the SLA state of a ticket at a point in time.
type Kind string

const (
	ResponseBreached   Kind = "response_breached"
	ResolutionBreached Kind = "resolution_breached"
	ResponsePending    Kind = "response_pending"
	ResolutionPending  Kind = "resolution_pending"
	NoActiveSLA        Kind = "no_active_sla"
)

// Status is the result of evaluating a ticket against its deadlines.
// Remaining is populated only for the pending kinds.
type Status struct {
	Kind      Kind
	Remaining time.Duration
}

// Evaluate is a pure function of (ticket, now). Resolved and finished
// tickets are exempt from resolution breaches; deleted tickets carry no
// active SLA obligations either.
func Evaluate(ticket *domain.Ticket, now time.Time) Status {
	responseAt := ticket.SLAResponseAt
	resolutionAt := ticket.SLAResolutionAt

	switch {
	case ticket.Status == domain.TicketStatusOpen && responseAt != nil && now.After(*responseAt):
		return Status{Kind: ResponseBreached}
	case resolutionAt != nil && now.After(*resolutionAt) && !resolutionExempt(ticket.Status):
		return Status{Kind: ResolutionBreached}
	case responseAt != nil && !now.After(*responseAt):
		return Status{Kind: ResponsePending, Remaining: responseAt.Sub(now)}
	case resolutionAt != nil && !now.After(*resolutionAt):
		return Status{Kind: ResolutionPending, Remaining: resolutionAt.Sub(now)}
	default:
		return Status{Kind: NoActiveSLA}
	}
}

func resolutionExempt(status domain.TicketStatus) bool {
	switch status {
	case domain.TicketStatusResolved, domain.TicketStatusFinished, domain.TicketStatusDeleted:
		return true
	}
	return false
}

// Deadlines derives the response and resolution timestamps for a ticket
// created at createdAt under the reason's policy. A zero or negative
// minute budget yields no deadline of that kind.
func Deadlines(reason *domain.Reason, createdAt time.Time) (responseAt, resolutionAt *time.Time) {
	if reason == nil {
		return nil, nil
	}
	if reason.ResponseMinutes > 0 {
		t := createdAt.Add(time.Duration(reason.ResponseMinutes) * time.Minute)
		responseAt = &t
	}
	if reason.ResolutionMinutes > 0 {
		t := createdAt.Add(time.Duration(reason.ResolutionMinutes) * time.Minute)
		resolutionAt = &t
	}
	return responseAt, resolutionAt
}
