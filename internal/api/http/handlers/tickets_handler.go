package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/sla"
	"github.com/spec-kit/support-desk/internal/store"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	store *store.Store
	now   func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketStore *store.Store) *TicketsHandler {
	return &TicketsHandler{store: ticketStore, now: time.Now}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.store.CreateTicket(c.UserContext(), principal.User.ID, store.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		ReasonID:     req.ReasonID,
		Priority:     req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.store.FetchTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.store.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	comments, err := h.store.Comments(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	attachments, err := h.store.Attachments(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket, comments, attachments)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.store.UpdateTicket(c.UserContext(), principal.User.ID, c.Params("id"), store.Patch{
		Status:         req.Status,
		Priority:       req.Priority,
		AssignedTo:     req.AssignedTo,
		DeletionReason: req.DeletionReason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	comment, err := h.store.AddComment(c.UserContext(), principal.User.ID, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// AddAttachment POST /tickets/:id/attachments.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	attachment, err := h.store.AddAttachment(c.UserContext(), principal.User.ID, c.Params("id"), store.Upload{
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// GetHistory GET /tickets/:id/history. Drains the cursor up to the
// requested limit, newest first.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	cursor := h.store.History(c.Params("id"))
	entries := make([]dto.TicketEventResponse, 0, limit)
	for len(entries) < limit && cursor.Next(c.UserContext()) {
		event := cursor.Event()
		entries = append(entries, dto.TicketEventResponse{
			ID:         event.ID,
			ChangeType: event.ChangeType,
			ActorID:    event.ActorID,
			OldValue:   event.OldValue,
			NewValue:   event.NewValue,
			CreatedAt:  event.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

func (h *TicketsHandler) ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return ticketSummaryAt(ticket, h.now())
}

func ticketSummaryAt(ticket *domain.Ticket, now time.Time) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		Title:           ticket.Title,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		DepartmentID:    ticket.DepartmentID,
		DepartmentName:  ticket.DepartmentName,
		ReasonID:        ticket.ReasonID,
		ReasonName:      ticket.ReasonName,
		CreatorName:     ticket.CreatorName,
		AssignedTo:      ticket.AssignedTo,
		AssigneeName:    ticket.AssigneeName,
		SLAResponseAt:   ticket.SLAResponseAt,
		SLAResolutionAt: ticket.SLAResolutionAt,
		SLA:             slaResponse(sla.Evaluate(ticket, now)),
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func slaResponse(status sla.Status) dto.SLAStatusResponse {
	resp := dto.SLAStatusResponse{Kind: string(status.Kind)}
	if status.Kind == sla.ResponsePending || status.Kind == sla.ResolutionPending {
		secs := int64(status.Remaining.Seconds())
		resp.RemainingSeconds = &secs
	}
	return resp
}

func (h *TicketsHandler) ticketDetail(ticket *domain.Ticket, comments []domain.Comment, attachments []domain.Attachment) dto.TicketDetailResponse {
	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, commentResponse(&comments[i]))
	}
	attachmentItems := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		attachmentItems = append(attachmentItems, attachmentResponse(&attachments[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary:  h.ticketSummary(ticket),
		Description:    ticket.Description,
		DeletionReason: ticket.DeletionReason,
		RespondedAt:    ticket.RespondedAt,
		ResolvedAt:     ticket.ResolvedAt,
		FinishedAt:     ticket.FinishedAt,
		Comments:       commentItems,
		Attachments:    attachmentItems,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        attachment.ID,
		FileName:  attachment.FileName,
		MimeType:  attachment.MimeType,
		SizeBytes: attachment.SizeBytes,
		CreatedAt: attachment.CreatedAt,
	}
}
