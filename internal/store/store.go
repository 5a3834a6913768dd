// Package store holds the in-process ticket collection and mediates all
// mutations through the persistence layer. The collection is replaced
// wholesale on each successful fetch; a failed round trip leaves prior
// state in place.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/sla"
	"github.com/spec-kit/support-desk/pkg/retry"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// Subscriber receives the replaced snapshot after each successful refresh.
type Subscriber func(tickets []domain.Ticket)

// Dependencies bundles collaborators for the store.
type Dependencies struct {
	Tickets     repository.TicketRepository
	Comments    repository.CommentRepository
	Attachments repository.AttachmentRepository
	Events      repository.TicketEventRepository
	Reasons     repository.ReasonRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Retry       retry.Policy
	Attachment  config.AttachmentConfig
	Now         func() time.Time
}

// Store is the single source of truth for the ticket collection within a
// session. Instances are independent; tests construct isolated ones.
type Store struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	events      repository.TicketEventRepository
	reasons     repository.ReasonRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	retry       retry.Policy
	attachment  config.AttachmentConfig
	now         func() time.Time

	mu       sync.RWMutex
	snapshot []domain.Ticket
	subs     map[int]Subscriber
	nextSub  int
}

// New constructs the store.
func New(deps Dependencies) *Store {
	s := &Store{
		tickets:     deps.Tickets,
		comments:    deps.Comments,
		attachments: deps.Attachments,
		events:      deps.Events,
		reasons:     deps.Reasons,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		retry:       deps.Retry,
		attachment:  deps.Attachment,
		now:         deps.Now,
		subs:        make(map[int]Subscriber),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.retry.Attempts == 0 {
		s.retry = retry.Default()
	}
	return s
}

// Subscribe registers a snapshot listener and returns an unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Lookup finds a ticket in the current snapshot.
func (s *Store) Lookup(ticketID string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ticket := range s.snapshot {
		if ticket.ID == ticketID {
			return ticket, true
		}
	}
	return domain.Ticket{}, false
}

// FetchTickets retrieves the full active collection with joined labels,
// newest first, replaces the snapshot and notifies subscribers. On error
// the prior snapshot stays in place.
func (s *Store) FetchTickets(ctx context.Context) ([]domain.Ticket, error) {
	var fetched []domain.Ticket
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		list, err := s.tickets.ListActive(ctx)
		if err != nil {
			return err
		}
		fetched = list
		return nil
	})
	if err != nil {
		s.logger.Warn("ticket fetch failed; keeping prior snapshot", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = fetched
	listeners := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	copied := make([]domain.Ticket, len(fetched))
	copy(copied, fetched)
	for _, fn := range listeners {
		fn(copied)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventBoardRefreshed,
		Payload: events.BoardRefreshedPayload{TicketCount: len(fetched)},
	})
	return copied, nil
}

// CreateInput describes ticket creation payload.
type CreateInput struct {
	Title        string
	Description  string
	DepartmentID string
	ReasonID     string
	Priority     domain.TicketPriority
}

// CreateTicket validates input, derives SLA deadlines from the reason's
// policy at creation time, persists the ticket and refreshes the
// collection.
func (s *Store) CreateTicket(ctx context.Context, actorID string, input CreateInput) (*domain.Ticket, error) {
	if actorID == "" {
		return nil, apperrors.NewUnauthenticated("authenticated caller required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" || input.DepartmentID == "" || input.ReasonID == "" {
		return nil, apperrors.NewValidationError("title, department_id and reason_id are required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Known() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	var reason *domain.Reason
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		found, err := s.reasons.GetByID(ctx, input.ReasonID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("reason", map[string]any{"reason_id": input.ReasonID})
		}
		if err != nil {
			return err
		}
		reason = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !reason.IsActive {
		return nil, apperrors.NewValidationError("reason inactive", map[string]any{"reason_id": reason.ID})
	}

	createdAt := s.now()
	responseAt, resolutionAt := sla.Deadlines(reason, createdAt)

	ticket := &domain.Ticket{
		ExternalKey:     generateTicketKey(),
		CreatorID:       actorID,
		DepartmentID:    input.DepartmentID,
		ReasonID:        input.ReasonID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.TicketStatusOpen,
		Priority:        priority,
		SLAResponseAt:   responseAt,
		SLAResolutionAt: resolutionAt,
	}
	if err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.tickets.Create(ctx, ticket)
	}); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, actorID, ticket.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":   ticket.Status,
		"priority": ticket.Priority,
		"title":    ticket.Title,
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketCreatedPayload{
			DepartmentID:    ticket.DepartmentID,
			ReasonID:        ticket.ReasonID,
			Priority:        ticket.Priority,
			Title:           ticket.Title,
			SLAResponseAt:   ticket.SLAResponseAt,
			SLAResolutionAt: ticket.SLAResolutionAt,
		},
	})
	s.refresh(ctx)
	return ticket, nil
}

// Patch describes an update to a ticket. Nil fields are untouched.
type Patch struct {
	Status         *domain.TicketStatus
	Priority       *domain.TicketPriority
	AssignedTo     *string
	DeletionReason *string
}

// UpdateTicket applies a patch under the forward-only workflow. Terminal
// tickets reject every patch. SLA deadlines are never recomputed here,
// even when priority changes.
func (s *Store) UpdateTicket(ctx context.Context, actorID, ticketID string, patch Patch) (*domain.Ticket, error) {
	if actorID == "" {
		return nil, apperrors.NewUnauthenticated("authenticated caller required")
	}

	current, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, apperrors.NewInvalidTransition("ticket is in a terminal state", map[string]any{
			"status": string(current.Status),
		})
	}

	updated := *current
	now := s.now()
	var statusChange *events.TicketStatusChangedPayload
	var priorityChange *events.TicketPriorityChangedPayload
	var assigneeChange *events.TicketAssignedPayload

	if patch.Status != nil && *patch.Status != current.Status {
		next := *patch.Status
		if !next.Known() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(next)})
		}
		if !domain.CanTransition(current.Status, next) {
			return nil, apperrors.NewInvalidTransition("illegal status transition", map[string]any{
				"from": string(current.Status),
				"to":   string(next),
			})
		}
		if next == domain.TicketStatusDeleted {
			if patch.DeletionReason == nil || strings.TrimSpace(*patch.DeletionReason) == "" {
				return nil, apperrors.NewValidationError("deletion_reason required", nil)
			}
			reason := strings.TrimSpace(*patch.DeletionReason)
			updated.DeletionReason = &reason
		}
		switch next {
		case domain.TicketStatusInProgress:
			if updated.RespondedAt == nil {
				updated.RespondedAt = &now
			}
		case domain.TicketStatusResolved:
			if updated.ResolvedAt == nil {
				updated.ResolvedAt = &now
			}
		case domain.TicketStatusFinished:
			if updated.FinishedAt == nil {
				updated.FinishedAt = &now
			}
		}
		updated.Status = next
		statusChange = &events.TicketStatusChangedPayload{
			OldStatus:      current.Status,
			NewStatus:      next,
			DeletionReason: updated.DeletionReason,
		}
	}

	if patch.Priority != nil && *patch.Priority != current.Priority {
		if !patch.Priority.Known() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(*patch.Priority)})
		}
		updated.Priority = *patch.Priority
		priorityChange = &events.TicketPriorityChangedPayload{
			OldPriority: current.Priority,
			NewPriority: updated.Priority,
		}
	}

	if patch.AssignedTo != nil {
		assignee := *patch.AssignedTo
		if assignee == "" {
			updated.AssignedTo = nil
		} else {
			updated.AssignedTo = &assignee
		}
		assigneeChange = &events.TicketAssignedPayload{AssignedTo: updated.AssignedTo}
	}

	if statusChange == nil && priorityChange == nil && assigneeChange == nil {
		return current, nil
	}

	if err := s.retry.Do(ctx, func(ctx context.Context) error {
		err := s.tickets.Update(ctx, &updated)
		if errors.Is(err, pgx.ErrNoRows) {
			// the guarded UPDATE matched nothing: a concurrent writer
			// already moved the ticket to a terminal state
			return apperrors.NewInvalidTransition("ticket is in a terminal state", nil)
		}
		return err
	}); err != nil {
		return nil, err
	}

	if statusChange != nil {
		s.recordEvent(ctx, actorID, ticketID, domain.ChangeTypeStatus,
			map[string]any{"status": statusChange.OldStatus},
			map[string]any{"status": statusChange.NewStatus})
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticketID,
			ActorID:  actorID,
			Payload:  *statusChange,
		})
	}
	if priorityChange != nil {
		s.recordEvent(ctx, actorID, ticketID, domain.ChangeTypePriority,
			map[string]any{"priority": priorityChange.OldPriority},
			map[string]any{"priority": priorityChange.NewPriority})
		s.publish(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticketID,
			ActorID:  actorID,
			Payload:  *priorityChange,
		})
	}
	if assigneeChange != nil {
		s.recordEvent(ctx, actorID, ticketID, domain.ChangeTypeAssignee,
			map[string]any{"assigned_to": current.AssignedTo},
			map[string]any{"assigned_to": updated.AssignedTo})
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticketID,
			ActorID:  actorID,
			Payload:  *assigneeChange,
		})
	}

	s.refresh(ctx)
	return &updated, nil
}

// AddComment appends to the ticket's thread. Comments never mutate
// ticket status.
func (s *Store) AddComment(ctx context.Context, actorID, ticketID, content string) (*domain.Comment, error) {
	if actorID == "" {
		return nil, apperrors.NewUnauthenticated("authenticated caller required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusDeleted {
		return nil, apperrors.NewInvalidTransition("ticket deleted", nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actorID,
		Content:  content,
	}
	if err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.comments.Create(ctx, comment)
	}); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, actorID, ticket.ID, domain.ChangeTypeComment, nil, map[string]any{
		"comment_id": comment.ID,
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:      comment.ID,
			AuthorID:       actorID,
			ContentPreview: stringPreview(content, 120),
		},
	})
	return comment, nil
}

// Upload describes an attachment candidate.
type Upload struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// AddAttachment validates the upload against the size/type policy before
// any round trip, then persists its metadata.
func (s *Store) AddAttachment(ctx context.Context, actorID, ticketID string, upload Upload) (*domain.Attachment, error) {
	if actorID == "" {
		return nil, apperrors.NewUnauthenticated("authenticated caller required")
	}
	if err := ValidateUpload(s.attachment, upload); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusDeleted {
		return nil, apperrors.NewInvalidTransition("ticket deleted", nil)
	}

	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		UploaderID: actorID,
		StorageKey: upload.StorageKey,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		SizeBytes:  upload.SizeBytes,
	}
	if err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.attachments.Create(ctx, attachment)
	}); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, actorID, ticket.ID, domain.ChangeTypeAttachment, nil, map[string]any{
		"attachment_id": attachment.ID,
		"file_name":     attachment.FileName,
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAttachmentAdded,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketAttachmentAddedPayload{
			AttachmentID: attachment.ID,
			FileName:     attachment.FileName,
			MimeType:     attachment.MimeType,
			SizeBytes:    attachment.SizeBytes,
		},
	})
	return attachment, nil
}

// Comments lists a ticket's thread oldest first.
func (s *Store) Comments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		list, err := s.comments.ListByTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

// Attachments lists a ticket's attachment metadata.
func (s *Store) Attachments(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		list, err := s.attachments.ListByTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

// GetTicket loads a single ticket with labels.
func (s *Store) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

func (s *Store) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		found, err := s.tickets.GetByID(ctx, ticketID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		if err != nil {
			return err
		}
		ticket = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// refresh re-reads the collection after a successful mutation. A refresh
// failure is logged, not surfaced: the mutation itself already succeeded.
func (s *Store) refresh(ctx context.Context) {
	if _, err := s.FetchTickets(ctx); err != nil {
		s.logger.Warn("post-mutation refresh failed", zap.Error(err))
	}
}

func (s *Store) recordEvent(ctx context.Context, actorID, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.events == nil {
		return
	}
	entry := &domain.TicketEvent{
		TicketID:   ticketID,
		ActorID:    &actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := s.events.Create(ctx, entry); err != nil {
		s.logger.Warn("ticket event not recorded", zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "SUP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
