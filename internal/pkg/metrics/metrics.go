// Package metrics defines and registers the custom Prometheus metrics of the
// Q&A API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default registry at package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qanda"

// ── Vote metrics ──────────────────────────────────────────────────────────────

// VotesCastTotal counts ledger writes.
// Labels:
//   - kind: "question" or "answer"
//   - value: "up", "down" or "none"
//   - change: "created", "updated", "removed" or "unchanged"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes cast, by item kind, value and ledger effect.",
	},
	[]string{"kind", "value", "change"},
)

// VoteRetriesTotal counts transparent retries after a lost insert race.
var VoteRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vote_retries_total",
		Help:      "Total number of vote upserts retried after a duplicate-key race.",
	},
	[]string{"kind"},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ContentCreatedTotal counts newly created questions and answers.
var ContentCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_created_total",
		Help:      "Total number of questions and answers created, by kind.",
	},
	[]string{"kind"},
)

// ContentDeletedTotal counts deletions.
// Labels:
//   - kind: "question" or "answer"
//   - by: "owner" or "moderator"
var ContentDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_deleted_total",
		Help:      "Total number of questions and answers deleted, by kind and actor.",
	},
	[]string{"kind", "by"},
)

// ── Notification and mail metrics ─────────────────────────────────────────────

// NotificationsTotal counts outbox appends.
// Label:
//   - result: "created", "failed" or "skipped_self"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification appends, by result.",
	},
	[]string{"result"},
)

// MailSentTotal counts delivery attempts.
// Labels:
//   - source: "report" or "notification"
//   - result: "ok", "error" or "dropped"
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Total number of mail delivery attempts, by source and result.",
	},
	[]string{"source", "result"},
)

// MailQueueDepth tracks the current number of mails waiting in each worker channel.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailSendDuration measures SMTP round trips.
var MailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of a single SMTP delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Auth and upload metrics ───────────────────────────────────────────────────

// TokenVerificationsTotal counts credential checks.
// Label:
//   - result: "ok", "invalid", "expired" or "revoked"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer credential verifications, by result.",
	},
	[]string{"result"},
)

// UploadsTotal counts upload attempts.
// Label:
//   - result: "stored", "rejected" or "error"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of image uploads, by result.",
	},
	[]string{"result"},
)
