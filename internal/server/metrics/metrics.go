// Package metrics exposes Prometheus collectors for the vault server.
package metrics

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the server's collectors.
	Registry = prometheus.NewRegistry()

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultguard",
			Name:      "cache_lookups_total",
			Help:      "List queries answered from cache (hit) or storage (miss).",
		},
		[]string{"query", "result"},
	)

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultguard",
			Name:      "commands_total",
			Help:      "Finished operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultguard",
			Name:      "command_duration_seconds",
			Help:      "Duration of operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultguard",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "gRPC requests by method and status code.",
		},
		[]string{"method", "code"},
	)
)

func init() {
	Registry.MustRegister(
		cacheLookups,
		commands,
		commandDuration,
		grpcRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Observer records service outcomes.
type Observer struct{}

func (Observer) CacheLookup(query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(query, result).Inc()
}

func (Observer) CommandFinished(op string, elapsed time.Duration, err error) {
	commands.WithLabelValues(op, Outcome(err)).Inc()
	commandDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Outcome is "ok" for a nil error and the error kind otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return common.KindOf(err).String()
}

// RecordGRPCRequest counts one finished unary call.
func RecordGRPCRequest(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}
