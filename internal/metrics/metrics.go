package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// Auth
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by method and outcome",
		},
		[]string{"method", "outcome"}, // register|login|firebase, success|failure|locked
	)

	// Cards
	CardOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_operations_total",
			Help: "Successful card mutations",
		},
		[]string{"op"}, // create|update|delete
	)
	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_like_toggles_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"action"}, // like|unlike
	)
	CommentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_comment_operations_total",
			Help: "Successful comment mutations",
		},
		[]string{"op"}, // add|edit|delete
	)

	SearchQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total search queries served",
		},
	)

	initOnce sync.Once
)

// Handler serves the /metrics endpoint
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			AuthAttempts,
			CardOps,
			LikeToggles,
			CommentOps,
			SearchQueries,
		)
	})
}
