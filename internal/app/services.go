package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/99-jordan/yarro-maintenance-triage/config"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/conversation"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/summary"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/triage"
	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
	"github.com/99-jordan/yarro-maintenance-triage/pkg/llm"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideStoreDriver,
		ProvideTicketService,
		ProvideConversationService,
		ProvideSummaryService,
		ProvideTriageService,
	),
)

func ProvideStoreDriver(db *gorm.DB) store.Driver {
	return store.NewPostgresDriver(db)
}

func ProvideTicketService(drv store.Driver) ticket.Service {
	return ticket.New(drv)
}

func ProvideConversationService(drv store.Driver) conversation.Service {
	return conversation.New(drv)
}

func ProvideSummaryService(drv store.Driver) summary.Service {
	return summary.New(drv)
}

func ProvideTriageService(
	tickets ticket.Service,
	conv conversation.Service,
	summaries summary.Service,
	reasoner *llm.Client,
	nc *nats.Conn,
	cfg *config.Config,
) triage.Service {
	// A typed nil would still satisfy the interface, so only wrap a live
	// connection.
	var publisher triage.EventPublisher
	if nc != nil {
		publisher = nc
	}
	return triage.New(tickets, conv, summaries, reasoner, publisher, cfg.Triage)
}
