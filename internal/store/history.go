package store

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

const historyBatchSize = 50

// HistoryCursor is a lazy, finite, non-restartable walk over a ticket's
// audit trail, newest first. Batches are pulled on demand; once exhausted
// the cursor stays exhausted.
type HistoryCursor struct {
	store    *Store
	ticketID string
	batch    []domain.TicketEvent
	idx      int
	offset   int
	done     bool
	err      error
	current  domain.TicketEvent
}

// History opens a cursor over a ticket's events.
func (s *Store) History(ticketID string) *HistoryCursor {
	return &HistoryCursor{store: s, ticketID: ticketID}
}

// Next advances the cursor, fetching the next batch when the current one
// is drained. It returns false at the end of the trail or on error.
func (c *HistoryCursor) Next(ctx context.Context) bool {
	if c.done || c.err != nil {
		return false
	}
	if c.idx >= len(c.batch) {
		if err := c.fetch(ctx); err != nil {
			c.err = err
			return false
		}
		if len(c.batch) == 0 {
			c.done = true
			return false
		}
	}
	c.current = c.batch[c.idx]
	c.idx++
	return true
}

// Event returns the entry positioned by the last successful Next.
func (c *HistoryCursor) Event() domain.TicketEvent {
	return c.current
}

// Err reports a fetch failure encountered during iteration.
func (c *HistoryCursor) Err() error {
	return c.err
}

func (c *HistoryCursor) fetch(ctx context.Context) error {
	var batch []domain.TicketEvent
	err := c.store.retry.Do(ctx, func(ctx context.Context) error {
		list, err := c.store.events.ListByTicket(ctx, c.ticketID, historyBatchSize, c.offset)
		if err != nil {
			return err
		}
		batch = list
		return nil
	})
	if err != nil {
		return err
	}
	c.batch = batch
	c.idx = 0
	c.offset += len(batch)
	return nil
}
