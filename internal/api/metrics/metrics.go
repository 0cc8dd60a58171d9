// Package metrics defines and registers all custom Prometheus metrics for the
// weather bot. It is the single source of truth for metric names, labels, and
// help strings; everything is registered with the default registry at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "weatherbot"

// ── Weather resolution ────────────────────────────────────────────────────────

// CacheLookupsTotal counts weather cache lookups.
// Label:
//   - result: "hit", "miss", or "error" (cache unreachable / corrupt entry)
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of weather cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ProviderRequestsTotal counts calls that reached the upstream weather API.
// Label:
//   - result: "ok" (resolved), "not_found" (provider negative), "error" (transport/malformed)
var ProviderRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of upstream weather provider requests, labelled by result.",
	},
	[]string{"result"},
)

// ── User registry ─────────────────────────────────────────────────────────────

// ProfileUpsertsTotal counts registry upserts by outcome.
// Label:
//   - outcome: "created", "updated", or "failed"
var ProfileUpsertsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_upserts_total",
		Help:      "Total number of user profile upserts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// ProfilesRegistered tracks the total number of profile rows. Refreshed
// periodically by the stats collector.
var ProfilesRegistered = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "profiles_registered",
		Help:      "Number of user profiles currently stored.",
	},
)

// ProfilesActive24h tracks how many profiles showed activity in the last day.
var ProfilesActive24h = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "profiles_active_24h",
		Help:      "Number of user profiles with activity in the last 24 hours.",
	},
)

// ── Messaging surface ─────────────────────────────────────────────────────────

// MessagesTotal counts inbound events from the messaging platform.
// Label:
//   - kind: "command", "callback", or "text"
var MessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Total number of inbound messaging events, labelled by kind.",
	},
	[]string{"kind"},
)
