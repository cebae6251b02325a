package instrument

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotionRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "notion_forms",
		Name:      "notion_request_duration_seconds",
		Help:      "Duration of Notion API calls by operation and outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	SearchPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "notion_forms",
		Name:      "search_pages_fetched_total",
		Help:      "Search result pages fetched while listing databases.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notion_forms",
		Name:      "submissions_total",
		Help:      "Form submissions by outcome (created, invalid, failed).",
	}, []string{"outcome"})
)

// RegisterMetricsRoute exposes the Prometheus registry on /metrics.
func RegisterMetricsRoute(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
