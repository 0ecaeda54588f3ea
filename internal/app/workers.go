package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

var (
	turnsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yarro_triage_turns_total",
		Help: "AI turns completed, counted from turn events.",
	})
	escalations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yarro_ticket_escalations_total",
		Help: "Tickets escalated to a human agent.",
	}, []string{"severity"})
)

type WorkerParams struct {
	fx.In

	Lc  fx.Lifecycle
	NC  *nats.Conn
	Drv store.Driver
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Info("workers disabled, no NATS connection")
		return
	}
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startEscalationWorker(p.NC, p.Drv)
			startTurnWorker(p.NC)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// subjectID extracts the trailing ticket id from subjects shaped
// yarro.ticket.<verb>.<id>.
func subjectID(subject string) (uuid.UUID, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) < 4 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ---------------------------------------------------------------------------
// escalation_worker
// ---------------------------------------------------------------------------

// startEscalationWorker surfaces escalated tickets to agent-facing channels.
// For now that is a structured log line that the ops stack alerts on, plus a
// metric broken down by ticket severity.
func startEscalationWorker(nc *nats.Conn, drv store.Driver) {
	_, err := nc.Subscribe("yarro.ticket.escalated.*", func(msg *nats.Msg) {
		ticketID, msgOK := subjectID(msg.Subject)
		if !msgOK {
			return
		}

		ctx := context.Background()
		t, err := drv.GetTicket(ctx, ticketID)
		if err != nil {
			slog.Warn("escalation_worker: ticket not found", "id", ticketID, "err", err)
			return
		}

		escalations.WithLabelValues(string(t.Severity)).Inc()
		slog.Warn("ticket escalated to agent",
			"ticket_id", t.ID,
			"title", t.Title,
			"status", t.Status,
			"severity", t.Severity,
			"reason", strings.TrimSpace(string(msg.Data)),
		)
	})
	if err != nil {
		slog.Error("escalation_worker: subscribe failed", "err", err)
	}

	slog.Info("escalation_worker: started")
}

// ---------------------------------------------------------------------------
// turn_worker
// ---------------------------------------------------------------------------

func startTurnWorker(nc *nats.Conn) {
	_, err := nc.Subscribe("yarro.ticket.turn.*", func(msg *nats.Msg) {
		turnsProcessed.Inc()
	})
	if err != nil {
		slog.Error("turn_worker: subscribe failed", "err", err)
	}

	slog.Info("turn_worker: started")
}
