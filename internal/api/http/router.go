package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Board          *handlers.BoardHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)

	board := api.Group("/board")
	board.Get("", cfg.Board.GetBoard)
	board.Post("/tickets/:id/move", cfg.Board.MoveCard)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Get("/departments", cfg.Admin.ListDepartments)
	admin.Post("/departments", cfg.Admin.CreateDepartment)
	admin.Patch("/departments/:id", cfg.Admin.UpdateDepartment)
	admin.Get("/departments/:id/reasons", cfg.Admin.ListReasons)
	admin.Post("/reasons", cfg.Admin.CreateReason)
}
