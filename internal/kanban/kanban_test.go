package kanban

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/sla"
	"github.com/spec-kit/support-desk/internal/store"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

type fakeMoverStore struct {
	tickets map[string]domain.Ticket

	getCalls    int
	updateCalls int
	lastPatch   store.Patch
	lastTicket  string
}

func (f *fakeMoverStore) Lookup(ticketID string) (domain.Ticket, bool) {
	ticket, ok := f.tickets[ticketID]
	return ticket, ok
}

func (f *fakeMoverStore) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	f.getCalls++
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return &ticket, nil
}

func (f *fakeMoverStore) UpdateTicket(ctx context.Context, actorID, ticketID string, patch store.Patch) (*domain.Ticket, error) {
	f.updateCalls++
	f.lastPatch = patch
	f.lastTicket = ticketID
	ticket := f.tickets[ticketID]
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	f.tickets[ticketID] = ticket
	return &ticket, nil
}

func TestMoveUnknownColumnRejected(t *testing.T) {
	fake := &fakeMoverStore{tickets: map[string]domain.Ticket{}}
	mover := NewMover(fake)

	err := mover.Move(context.Background(), "usr-1", MoveCommand{
		TicketID:     "tic-1",
		TargetColumn: domain.TicketStatus("backlog"),
	})
	if apperrors.CodeOf(err) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if fake.getCalls != 0 || fake.updateCalls != 0 {
		t.Fatal("unknown column must be rejected before any store call")
	}
}

func TestMoveSameColumnIsSilentNoOp(t *testing.T) {
	fake := &fakeMoverStore{tickets: map[string]domain.Ticket{
		"tic-1": {ID: "tic-1", Status: domain.TicketStatusInProgress},
	}}
	mover := NewMover(fake)

	err := mover.Move(context.Background(), "usr-1", MoveCommand{
		TicketID:     "tic-1",
		TargetColumn: domain.TicketStatusInProgress,
	})
	if err != nil {
		t.Fatalf("same-column drop must succeed silently: %v", err)
	}
	if fake.updateCalls != 0 {
		t.Fatal("same-column drop must not issue a store mutation")
	}
}

func TestMoveDelegatesToStore(t *testing.T) {
	fake := &fakeMoverStore{tickets: map[string]domain.Ticket{
		"tic-1": {ID: "tic-1", Status: domain.TicketStatusOpen},
	}}
	mover := NewMover(fake)

	err := mover.Move(context.Background(), "usr-1", MoveCommand{
		TicketID:     "tic-1",
		TargetColumn: domain.TicketStatusInProgress,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if fake.updateCalls != 1 || fake.lastTicket != "tic-1" {
		t.Fatalf("expected one update for tic-1, got %d for %q", fake.updateCalls, fake.lastTicket)
	}
	if fake.lastPatch.Status == nil || *fake.lastPatch.Status != domain.TicketStatusInProgress {
		t.Fatalf("unexpected patch: %+v", fake.lastPatch)
	}
}

func TestMovePassesDeletionReasonThrough(t *testing.T) {
	fake := &fakeMoverStore{tickets: map[string]domain.Ticket{
		"tic-1": {ID: "tic-1", Status: domain.TicketStatusOpen},
	}}
	mover := NewMover(fake)

	reason := "filed twice"
	err := mover.Move(context.Background(), "usr-1", MoveCommand{
		TicketID:       "tic-1",
		TargetColumn:   domain.TicketStatusDeleted,
		DeletionReason: &reason,
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if fake.lastPatch.DeletionReason == nil || *fake.lastPatch.DeletionReason != reason {
		t.Fatalf("deletion reason not forwarded: %+v", fake.lastPatch)
	}
}

func TestMoveUnknownTicketFallsBackToGet(t *testing.T) {
	fake := &fakeMoverStore{tickets: map[string]domain.Ticket{}}
	mover := NewMover(fake)

	err := mover.Move(context.Background(), "usr-1", MoveCommand{
		TicketID:     "tic-missing",
		TargetColumn: domain.TicketStatusInProgress,
	})
	if apperrors.CodeOf(err) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if fake.getCalls != 1 {
		t.Fatalf("expected fallback GetTicket call, got %d", fake.getCalls)
	}
}

func TestBuildBoardHasAllColumnsInWorkflowOrder(t *testing.T) {
	board := BuildBoard(nil, time.Now())
	if len(board.Columns) != len(domain.AllStatuses) {
		t.Fatalf("expected %d columns, got %d", len(domain.AllStatuses), len(board.Columns))
	}
	for i, column := range board.Columns {
		if column.Status != domain.AllStatuses[i] {
			t.Fatalf("column %d out of order: %s", i, column.Status)
		}
		if len(column.Cards) != 0 {
			t.Fatalf("empty board column %s should carry no cards", column.Status)
		}
	}
}

func TestBuildBoardGroupsByStatusPreservingOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(-time.Minute)
	tickets := []domain.Ticket{
		{ID: "tic-3", Status: domain.TicketStatusOpen, SLAResponseAt: &deadline},
		{ID: "tic-2", Status: domain.TicketStatusInProgress},
		{ID: "tic-1", Status: domain.TicketStatusOpen},
	}

	board := BuildBoard(tickets, now)

	open := board.Columns[0]
	if open.Status != domain.TicketStatusOpen || len(open.Cards) != 2 {
		t.Fatalf("unexpected open column: %+v", open)
	}
	if open.Cards[0].Ticket.ID != "tic-3" || open.Cards[1].Ticket.ID != "tic-1" {
		t.Fatal("cards must keep their snapshot order within a column")
	}
	if open.Cards[0].SLA.Kind != sla.ResponseBreached {
		t.Fatalf("expected card SLA evaluated, got %s", open.Cards[0].SLA.Kind)
	}

	inProgress := board.Columns[1]
	if len(inProgress.Cards) != 1 || inProgress.Cards[0].Ticket.ID != "tic-2" {
		t.Fatalf("unexpected in_progress column: %+v", inProgress)
	}
}
