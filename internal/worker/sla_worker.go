package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/sla"
)

// SnapshotSource provides the active ticket collection to sweep.
type SnapshotSource interface {
	Snapshot() []domain.Ticket
	FetchTickets(ctx context.Context) ([]domain.Ticket, error)
}

// SLAWorker periodically evaluates the board and publishes a breach event
// once per ticket per breach kind.
type SLAWorker struct {
	source     SnapshotSource
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	interval   time.Duration
	now        func() time.Time

	mu   sync.Mutex
	seen map[string]sla.Kind
}

// NewSLAWorker constructs the worker.
func NewSLAWorker(source SnapshotSource, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *SLAWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SLAWorker{
		source:     source,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		interval:   interval,
		now:        time.Now,
		seen:       make(map[string]sla.Kind),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *SLAWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Sweep(ctx)
			}
		}
	}()
}

// Sweep evaluates every ticket in the snapshot once.
func (w *SLAWorker) Sweep(ctx context.Context) {
	tickets := w.source.Snapshot()
	if len(tickets) == 0 {
		if fetched, err := w.source.FetchTickets(ctx); err == nil {
			tickets = fetched
		}
	}

	now := w.now()
	for i := range tickets {
		ticket := tickets[i]
		status := sla.Evaluate(&ticket, now)
		if status.Kind != sla.ResponseBreached && status.Kind != sla.ResolutionBreached {
			continue
		}
		if w.alreadySeen(ticket.ID, status.Kind) {
			continue
		}

		deadline := ticket.SLAResponseAt
		if status.Kind == sla.ResolutionBreached {
			deadline = ticket.SLAResolutionAt
		}
		w.metrics.RecordSLABreach(string(status.Kind))
		w.logger.Warn("sla breach detected",
			zap.String("ticket_id", ticket.ID),
			zap.String("kind", string(status.Kind)),
		)
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketSLABreached,
			TicketID:  ticket.ID,
			Timestamp: now,
			Payload: events.TicketSLABreachedPayload{
				Kind:     string(status.Kind),
				Priority: ticket.Priority,
			},
		}
		if deadline != nil {
			payload := event.Payload.(events.TicketSLABreachedPayload)
			payload.Deadline = *deadline
			event.Payload = payload
		}
		if w.dispatcher != nil {
			_ = w.dispatcher.Publish(ctx, event)
		}
	}
}

func (w *SLAWorker) alreadySeen(ticketID string, kind sla.Kind) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[ticketID] == kind {
		return true
	}
	w.seen[ticketID] = kind
	return false
}
