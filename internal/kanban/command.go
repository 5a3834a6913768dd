package kanban

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/store"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// MoveCommand carries a drag event: a ticket dropped on a target column.
type MoveCommand struct {
	TicketID       string
	TargetColumn   domain.TicketStatus
	DeletionReason *string
}

// TicketMover is the slice of the store the board needs.
type TicketMover interface {
	Lookup(ticketID string) (domain.Ticket, bool)
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	UpdateTicket(ctx context.Context, actorID, ticketID string, patch store.Patch) (*domain.Ticket, error)
}

// Mover validates drag commands and delegates legal ones to the store.
// Forward-only ordering is enforced by the store, not here.
type Mover struct {
	store TicketMover
}

// NewMover constructs the command handler.
func NewMover(s TicketMover) *Mover {
	return &Mover{store: s}
}

// Move executes a drag command. Dropping a card on its current column is
// a silent no-op: no store mutation is issued.
func (m *Mover) Move(ctx context.Context, actorID string, cmd MoveCommand) error {
	if !cmd.TargetColumn.Known() {
		return apperrors.NewValidationError("unknown target column", map[string]any{
			"target": string(cmd.TargetColumn),
		})
	}

	current, ok := m.store.Lookup(cmd.TicketID)
	if !ok {
		loaded, err := m.store.GetTicket(ctx, cmd.TicketID)
		if err != nil {
			return err
		}
		current = *loaded
	}
	if current.Status == cmd.TargetColumn {
		return nil
	}

	target := cmd.TargetColumn
	_, err := m.store.UpdateTicket(ctx, actorID, cmd.TicketID, store.Patch{
		Status:         &target,
		DeletionReason: cmd.DeletionReason,
	})
	return err
}
