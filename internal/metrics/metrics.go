// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action outcomes used as the outcome label of ActionsHandled.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeInternal = "internal"
	OutcomeUnknown  = "unknown"
)

// ─── Game Metrics ───────────────────────────────────────────────────────────

var ActionsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "actions_total",
	Help:      "Actions handled by name and outcome.",
}, []string{"action", "outcome"})

var ActionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "action_duration_seconds",
	Help:      "Time spent handling an action, including delivery.",
	Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
}, []string{"action"})

var ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "active",
	Help:      "Games currently held in memory.",
})

var GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "finished_total",
	Help:      "Games that reached a winner.",
})

var Bankruptcies = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "bankruptcies_total",
	Help:      "Players that went bankrupt.",
})

// Auctions counts resolved auctions; result is "sold" or "unsold".
var Auctions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "game",
	Name:      "auctions_total",
	Help:      "Resolved auctions by result.",
}, []string{"result"})

// ─── Transport Metrics ──────────────────────────────────────────────────────

var Connections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "monopoly",
	Subsystem: "ws",
	Name:      "connections",
	Help:      "Open websocket connections.",
})

var ActionLogErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "historian",
	Name:      "publish_errors_total",
	Help:      "Action records that could not be pushed to Redis.",
})

var RecordsFlushed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "monopoly",
	Subsystem: "historian",
	Name:      "records_flushed_total",
	Help:      "Action records written to the store.",
})
