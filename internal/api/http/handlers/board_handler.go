package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/kanban"
	"github.com/spec-kit/support-desk/internal/store"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// BoardHandler serves the Kanban board and drag events.
type BoardHandler struct {
	store *store.Store
	mover *kanban.Mover
	now   func() time.Time
}

// NewBoardHandler constructs handler.
func NewBoardHandler(ticketStore *store.Store, mover *kanban.Mover) *BoardHandler {
	return &BoardHandler{store: ticketStore, mover: mover, now: time.Now}
}

// GetBoard GET /board.
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	tickets, err := h.store.FetchTickets(c.UserContext())
	if err != nil {
		return err
	}

	now := h.now()
	board := kanban.BuildBoard(tickets, now)
	columns := make([]dto.BoardColumnResponse, 0, len(board.Columns))
	for _, column := range board.Columns {
		cards := make([]dto.TicketSummary, 0, len(column.Cards))
		for i := range column.Cards {
			cards = append(cards, ticketSummaryAt(&column.Cards[i].Ticket, now))
		}
		columns = append(columns, dto.BoardColumnResponse{Status: column.Status, Cards: cards})
	}
	return c.JSON(fiber.Map{"data": dto.BoardResponse{Columns: columns, GeneratedAt: board.GeneratedAt}})
}

// MoveCard POST /board/tickets/:id/move.
func (h *BoardHandler) MoveCard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthenticated("user required")
	}
	var req dto.MoveCardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	err := h.mover.Move(c.UserContext(), principal.User.ID, kanban.MoveCommand{
		TicketID:       c.Params("id"),
		TargetColumn:   req.TargetColumn,
		DeletionReason: req.DeletionReason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"moved": true}})
}
