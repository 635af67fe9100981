package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusInvalid = "invalid"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prayerwall",
			Name:      "submissions_total",
			Help:      "Prayer submissions by outcome",
		},
		[]string{"status"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prayerwall",
			Name:      "exports_total",
			Help:      "PDF exports by outcome",
		},
		[]string{"status"},
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prayerwall",
			Name:      "export_duration_seconds",
			Help:      "Time to read and render the PDF export",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prayerwall",
			Name:      "feed_requests_total",
			Help:      "Calendar feed requests by feed and outcome",
		},
		[]string{"feed", "status"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "prayerwall",
			Name:      "live_clients",
			Help:      "Connected live-feed WebSocket clients",
		},
	)
)

// Handler exposes the default registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
