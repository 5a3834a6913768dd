// Package kanban renders the ticket collection as a six-column board and
// turns drag events into validated store commands.
package kanban

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/sla"
)

// Card pairs a ticket with its SLA state at render time.
type Card struct {
	Ticket domain.Ticket
	SLA    sla.Status
}

// Column is one board lane.
type Column struct {
	Status domain.TicketStatus
	Cards  []Card
}

// Board groups tickets by status. Columns appear in workflow order and
// are present even when empty.
type Board struct {
	Columns     []Column
	GeneratedAt time.Time
}

// BuildBoard groups the snapshot into columns, preserving the snapshot's
// newest-first order within each, and evaluates SLA per card.
func BuildBoard(tickets []domain.Ticket, now time.Time) Board {
	byStatus := make(map[domain.TicketStatus][]Card, len(domain.AllStatuses))
	for i := range tickets {
		ticket := tickets[i]
		byStatus[ticket.Status] = append(byStatus[ticket.Status], Card{
			Ticket: ticket,
			SLA:    sla.Evaluate(&ticket, now),
		})
	}

	columns := make([]Column, 0, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		columns = append(columns, Column{Status: status, Cards: byStatus[status]})
	}
	return Board{Columns: columns, GeneratedAt: now}
}
