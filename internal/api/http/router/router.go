package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/99-jordan/yarro-maintenance-triage/config"
	"github.com/99-jordan/yarro-maintenance-triage/internal/api/http/handler"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/conversation"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/summary"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/triage"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	DB              *gorm.DB
	TicketSvc       ticket.Service
	ConversationSvc conversation.Service
	SummarySvc      summary.Service
	TriageSvc       triage.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	ticketH := handler.NewTicketHandler(r.p.TicketSvc)
	conversationH := handler.NewConversationHandler(r.p.ConversationSvc, r.p.SummarySvc)
	triageH := handler.NewTriageHandler(r.p.TriageSvc)

	api := app.Group("/api/v1")

	r.registerTicketRoutes(api, ticketH, conversationH, triageH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			sqlDB, err := r.p.DB.DB()
			if err != nil {
				return false
			}
			return sqlDB.PingContext(c.Context()) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
