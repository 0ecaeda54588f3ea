package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/99-jordan/yarro-maintenance-triage/internal/api/http/handler"
)

func (r *Router) registerTicketRoutes(
	api fiber.Router,
	th *handler.TicketHandler,
	ch *handler.ConversationHandler,
	trh *handler.TriageHandler,
) {
	tickets := api.Group("/tickets")

	tickets.Get("/", th.List)
	tickets.Post("/", th.Create)

	t := tickets.Group("/:id")
	t.Get("/", th.Get)
	t.Patch("/status", th.UpdateStatus)
	t.Get("/messages", ch.ListMessages)
	t.Get("/summary", ch.GetSummary)
	t.Post("/messages", trh.Submit)
	t.Post("/messages/observe", trh.Observe)
}
