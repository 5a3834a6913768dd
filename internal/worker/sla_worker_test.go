package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/sla"
)

type fakeSource struct {
	tickets    []domain.Ticket
	fetchCalls int
}

func (f *fakeSource) Snapshot() []domain.Ticket {
	out := make([]domain.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out
}

func (f *fakeSource) FetchTickets(ctx context.Context) ([]domain.Ticket, error) {
	f.fetchCalls++
	return f.Snapshot(), nil
}

func newBreachedTicket(id string, createdAt time.Time) domain.Ticket {
	responseAt := createdAt.Add(60 * time.Minute)
	resolutionAt := createdAt.Add(240 * time.Minute)
	return domain.Ticket{
		ID:              id,
		Status:          domain.TicketStatusOpen,
		Priority:        domain.TicketPriorityUrgent,
		SLAResponseAt:   &responseAt,
		SLAResolutionAt: &resolutionAt,
		CreatedAt:       createdAt,
	}
}

func TestSweepPublishesBreachOncePerTicketAndKind(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{tickets: []domain.Ticket{newBreachedTicket("tic-1", createdAt)}}

	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventTicketSLABreached, func(ctx context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	})

	w := NewSLAWorker(source, dispatcher, observability.NewMetrics(), zap.NewNop(), time.Minute)
	w.now = func() time.Time { return createdAt.Add(90 * time.Minute) }

	w.Sweep(context.Background())
	w.Sweep(context.Background())

	if len(published) != 1 {
		t.Fatalf("expected a single breach event across sweeps, got %d", len(published))
	}
	payload, ok := published[0].Payload.(events.TicketSLABreachedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", published[0].Payload)
	}
	if payload.Kind != string(sla.ResponseBreached) {
		t.Fatalf("expected response breach, got %s", payload.Kind)
	}
	if published[0].TicketID != "tic-1" {
		t.Fatalf("unexpected ticket id %s", published[0].TicketID)
	}
}

func TestSweepEscalatesToResolutionBreach(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ticket := newBreachedTicket("tic-1", createdAt)
	ticket.Status = domain.TicketStatusInProgress
	source := &fakeSource{tickets: []domain.Ticket{ticket}}

	dispatcher := events.NewInMemoryDispatcher()
	var kinds []string
	dispatcher.Subscribe(events.EventTicketSLABreached, func(ctx context.Context, event events.Event) error {
		kinds = append(kinds, event.Payload.(events.TicketSLABreachedPayload).Kind)
		return nil
	})

	w := NewSLAWorker(source, dispatcher, observability.NewMetrics(), zap.NewNop(), time.Minute)

	w.now = func() time.Time { return createdAt.Add(241 * time.Minute) }
	w.Sweep(context.Background())
	w.Sweep(context.Background())

	if len(kinds) != 1 || kinds[0] != string(sla.ResolutionBreached) {
		t.Fatalf("expected one resolution breach, got %v", kinds)
	}
}

func TestSweepIgnoresHealthyTickets(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{tickets: []domain.Ticket{newBreachedTicket("tic-1", createdAt)}}

	dispatcher := events.NewInMemoryDispatcher()
	var published int
	dispatcher.Subscribe(events.EventTicketSLABreached, func(ctx context.Context, event events.Event) error {
		published++
		return nil
	})

	w := NewSLAWorker(source, dispatcher, observability.NewMetrics(), zap.NewNop(), time.Minute)
	w.now = func() time.Time { return createdAt.Add(10 * time.Minute) }

	w.Sweep(context.Background())
	if published != 0 {
		t.Fatalf("no breach expected within deadlines, got %d events", published)
	}
}

func TestSweepFetchesWhenSnapshotEmpty(t *testing.T) {
	source := &fakeSource{}
	w := NewSLAWorker(source, events.NewInMemoryDispatcher(), observability.NewMetrics(), zap.NewNop(), time.Minute)

	w.Sweep(context.Background())
	if source.fetchCalls != 1 {
		t.Fatalf("expected a fetch for an empty snapshot, got %d", source.fetchCalls)
	}
}
