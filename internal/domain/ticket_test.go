package domain

import "testing"

func TestCanTransitionForwardSteps(t *testing.T) {
	steps := []struct {
		from, to TicketStatus
	}{
		{TicketStatusOpen, TicketStatusInProgress},
		{TicketStatusInProgress, TicketStatusPartiallyResolved},
		{TicketStatusPartiallyResolved, TicketStatusResolved},
		{TicketStatusResolved, TicketStatusFinished},
	}
	for _, step := range steps {
		if !CanTransition(step.from, step.to) {
			t.Fatalf("%s -> %s should be allowed", step.from, step.to)
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	skips := []struct {
		from, to TicketStatus
	}{
		{TicketStatusOpen, TicketStatusPartiallyResolved},
		{TicketStatusOpen, TicketStatusResolved},
		{TicketStatusOpen, TicketStatusFinished},
		{TicketStatusInProgress, TicketStatusResolved},
		{TicketStatusInProgress, TicketStatusFinished},
		{TicketStatusPartiallyResolved, TicketStatusFinished},
	}
	for _, skip := range skips {
		if CanTransition(skip.from, skip.to) {
			t.Fatalf("%s -> %s should be rejected", skip.from, skip.to)
		}
	}
}

func TestCanTransitionRejectsBackwardMoves(t *testing.T) {
	backward := []struct {
		from, to TicketStatus
	}{
		{TicketStatusInProgress, TicketStatusOpen},
		{TicketStatusPartiallyResolved, TicketStatusInProgress},
		{TicketStatusResolved, TicketStatusPartiallyResolved},
		{TicketStatusResolved, TicketStatusOpen},
	}
	for _, move := range backward {
		if CanTransition(move.from, move.to) {
			t.Fatalf("%s -> %s should be rejected", move.from, move.to)
		}
	}
}

func TestCanTransitionDeleteFromAnyNonTerminalState(t *testing.T) {
	for _, from := range []TicketStatus{
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusPartiallyResolved,
		TicketStatusResolved,
	} {
		if !CanTransition(from, TicketStatusDeleted) {
			t.Fatalf("%s -> deleted should be allowed", from)
		}
	}
}

func TestTerminalStatesPermitNothing(t *testing.T) {
	for _, from := range []TicketStatus{TicketStatusFinished, TicketStatusDeleted} {
		for _, to := range AllStatuses {
			if CanTransition(from, to) {
				t.Fatalf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if !TicketStatusFinished.Terminal() || !TicketStatusDeleted.Terminal() {
		t.Fatal("finished and deleted are terminal")
	}
	for _, s := range []TicketStatus{
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusPartiallyResolved,
		TicketStatusResolved,
	} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestStatusKnown(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Known() {
			t.Fatalf("%s should be known", s)
		}
	}
	if TicketStatus("archived").Known() {
		t.Fatal("archived should not be known")
	}
}

func TestPriorityKnown(t *testing.T) {
	for _, p := range []TicketPriority{TicketPriorityUrgent, TicketPriorityMedium, TicketPriorityLow} {
		if !p.Known() {
			t.Fatalf("%s should be known", p)
		}
	}
	if TicketPriority("critical").Known() {
		t.Fatal("critical should not be known")
	}
}
