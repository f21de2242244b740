package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/outlet-ops/internal/api/http/handlers"
	"github.com/spec-kit/outlet-ops/internal/auth"
	"github.com/spec-kit/outlet-ops/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Completion     *handlers.CompletionHandler
	Reports        *handlers.ReportsHandler
	Staff          *handlers.StaffHandler
	Intake         *handlers.IntakeHandler
	AuthMiddleware *auth.AuthMiddleware
	IntakeToken    string
}

// RegisterRoutes wires HTTP routes. Intake endpoints authenticate with
// the shared feed token; everything under the dashboard requires a
// staff JWT, with mutations limited to managers and admins.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Staff.Login)

	intake := app.Group("/intake", IntakeGuard(cfg.IntakeToken))
	intake.Post("/tickets", cfg.Intake.CreateTicket)
	intake.Post("/submissions", cfg.Intake.CreateSubmission)
	intake.Post("/roster", cfg.Intake.CreateRosterEntry)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protected.Post("/auth/password/change", cfg.Staff.ChangePassword)

	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/closed", cfg.Tickets.ListClosedTickets)
	protected.Get("/tickets/:key", cfg.Tickets.GetTicket)
	protected.Get("/tickets/:key/history", cfg.Tickets.GetTicketHistory)

	mutate := protected.Group("", auth.RequireRole(domain.StaffRoleManager, domain.StaffRoleAdmin))
	mutate.Post("/tickets/:key/reclassify", cfg.Tickets.ReclassifyTicket)
	mutate.Post("/tickets/:key/assign", cfg.Tickets.AssignTicket)
	mutate.Post("/tickets/:key/status", cfg.Tickets.UpdateTicketStatus)

	protected.Get("/completion", cfg.Completion.GetOverview)
	protected.Get("/reports/daily", cfg.Reports.GetDailyReport)
	protected.Get("/reports/weekly", cfg.Reports.GetWeeklyReport)
}
