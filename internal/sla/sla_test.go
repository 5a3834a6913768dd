package sla

import (
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

func ts(t time.Time) *time.Time { return &t }

func TestEvaluateResponseBreachedOnOpenTicket(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusOpen,
		Priority:        domain.TicketPriorityUrgent,
		SLAResponseAt:   ts(createdAt.Add(60 * time.Minute)),
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}

	got := Evaluate(ticket, createdAt.Add(61*time.Minute))
	if got.Kind != ResponseBreached {
		t.Fatalf("expected %s, got %s", ResponseBreached, got.Kind)
	}
}

func TestEvaluateResolvedTicketExemptFromResolutionBreach(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusResolved,
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}

	got := Evaluate(ticket, createdAt.Add(48*time.Hour))
	if got.Kind == ResolutionBreached {
		t.Fatalf("resolved ticket must not report %s", ResolutionBreached)
	}
	if got.Kind != NoActiveSLA {
		t.Fatalf("expected %s, got %s", NoActiveSLA, got.Kind)
	}
}

func TestEvaluateResolutionBreachedWhileInProgress(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusInProgress,
		SLAResponseAt:   ts(createdAt.Add(60 * time.Minute)),
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}

	got := Evaluate(ticket, createdAt.Add(241*time.Minute))
	if got.Kind != ResolutionBreached {
		t.Fatalf("expected %s, got %s", ResolutionBreached, got.Kind)
	}
}

func TestEvaluateResponsePendingReportsRemaining(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusOpen,
		SLAResponseAt:   ts(createdAt.Add(60 * time.Minute)),
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}

	got := Evaluate(ticket, createdAt.Add(45*time.Minute))
	if got.Kind != ResponsePending {
		t.Fatalf("expected %s, got %s", ResponsePending, got.Kind)
	}
	if got.Remaining != 15*time.Minute {
		t.Fatalf("expected 15m remaining, got %s", got.Remaining)
	}
}

func TestEvaluateResolutionPendingAfterResponseWindow(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusInProgress,
		SLAResponseAt:   ts(createdAt.Add(60 * time.Minute)),
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}

	got := Evaluate(ticket, createdAt.Add(90*time.Minute))
	if got.Kind != ResolutionPending {
		t.Fatalf("expected %s, got %s", ResolutionPending, got.Kind)
	}
	if got.Remaining != 150*time.Minute {
		t.Fatalf("expected 150m remaining, got %s", got.Remaining)
	}
}

func TestEvaluateNoDeadlinesMeansNoActiveSLA(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen}
	got := Evaluate(ticket, time.Now())
	if got.Kind != NoActiveSLA {
		t.Fatalf("expected %s, got %s", NoActiveSLA, got.Kind)
	}
}

func TestEvaluateDeterministicForFixedInputs(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Status:          domain.TicketStatusOpen,
		SLAResponseAt:   ts(createdAt.Add(60 * time.Minute)),
		SLAResolutionAt: ts(createdAt.Add(240 * time.Minute)),
		CreatedAt:       createdAt,
	}
	now := createdAt.Add(30 * time.Minute)

	first := Evaluate(ticket, now)
	for i := 0; i < 10; i++ {
		if got := Evaluate(ticket, now); got != first {
			t.Fatalf("evaluation diverged on call %d: %+v vs %+v", i, got, first)
		}
	}
}

func TestDeadlinesFromReasonPolicy(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reason := &domain.Reason{ResponseMinutes: 60, ResolutionMinutes: 240}

	responseAt, resolutionAt := Deadlines(reason, createdAt)
	if responseAt == nil || !responseAt.Equal(createdAt.Add(60*time.Minute)) {
		t.Fatalf("unexpected response deadline: %v", responseAt)
	}
	if resolutionAt == nil || !resolutionAt.Equal(createdAt.Add(240*time.Minute)) {
		t.Fatalf("unexpected resolution deadline: %v", resolutionAt)
	}
}

func TestDeadlinesZeroBudgetYieldsNone(t *testing.T) {
	createdAt := time.Now()
	responseAt, resolutionAt := Deadlines(&domain.Reason{}, createdAt)
	if responseAt != nil || resolutionAt != nil {
		t.Fatalf("expected no deadlines, got %v / %v", responseAt, resolutionAt)
	}

	responseAt, resolutionAt = Deadlines(nil, createdAt)
	if responseAt != nil || resolutionAt != nil {
		t.Fatalf("expected no deadlines for nil reason, got %v / %v", responseAt, resolutionAt)
	}
}
