// Package metrics defines and registers all custom Prometheus metrics for the
// disposable-email API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default registry via promauto at
// package load; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tempmail"

// ── Outbound metrics ──────────────────────────────────────────────────────────

// MessagesSentTotal counts outbound messages accepted by the relay.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of outbound messages successfully relayed.",
	},
)

// SendDenialsTotal counts outbound sends denied by the permission gate.
// Label:
//   - reason: "disabled", "no_permission", "limit_reached", or "check_failed"
var SendDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "send_denials_total",
		Help:      "Total number of sends denied by the permission gate, by reason.",
	},
	[]string{"reason"},
)

// RelayErrorsTotal counts messages rejected by the upstream relay.
var RelayErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relay_errors_total",
		Help:      "Total number of outbound messages rejected by the relay.",
	},
)

// ── Inbound metrics ───────────────────────────────────────────────────────────

// MessagesDelivered counts inbound delivery outcomes.
// Label:
//   - result: "ok" (stored or intentionally dropped) or "error"
var MessagesDelivered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_delivered_total",
		Help:      "Total number of inbound messages processed, by result.",
	},
	[]string{"result"},
)

// InboundQueueDepth tracks the number of messages waiting in each worker
// channel of the inbound dispatcher.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var InboundQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inbound_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Mailbox metrics ───────────────────────────────────────────────────────────

// MailboxesCreatedTotal counts newly provisioned mailboxes.
var MailboxesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mailboxes_created_total",
		Help:      "Total number of mailboxes provisioned.",
	},
)

// MailboxesPurgedTotal counts mailboxes removed by the expiry cleanup.
var MailboxesPurgedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mailboxes_purged_total",
		Help:      "Total number of expired mailboxes deleted by cleanup runs.",
	},
)
