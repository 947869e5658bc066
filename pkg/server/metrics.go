package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crystal-mush/mushmatch/pkg/match"
)

// Metrics holds Prometheus metric descriptors for the resolver.
type Metrics struct {
	game      *Game
	startTime time.Time

	resolutionsTotal *prometheus.CounterVec
	notifiesTotal    prometheus.Counter
	objectsTotal     prometheus.Gauge
	uptimeSeconds    prometheus.Gauge
}

// NewMetrics creates and registers Prometheus metrics for the game, and
// attaches them so the resolver entry points record outcomes.
func NewMetrics(game *Game, startTime time.Time) *Metrics {
	m := &Metrics{
		game:      game,
		startTime: startTime,
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mushmatch_resolutions_total",
			Help: "Name resolutions performed, by outcome.",
		}, []string{"outcome"}),
		notifiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mushmatch_notifies_total",
			Help: "Failure notifications delivered to players.",
		}),
		objectsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mushmatch_objects_total",
			Help: "Total number of objects in the database.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mushmatch_uptime_seconds",
			Help: "Process uptime in seconds.",
		}),
	}

	prometheus.MustRegister(
		m.resolutionsTotal,
		m.notifiesTotal,
		m.objectsTotal,
		m.uptimeSeconds,
	)

	game.Metrics = m
	return m
}

// ObserveResolution records one resolver outcome.
func (m *Metrics) ObserveResolution(status match.Status) {
	m.resolutionsTotal.WithLabelValues(status.String()).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint, updating
// the point-in-time gauges on each scrape.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.objectsTotal.Set(float64(len(m.game.DB.Objects)))
		m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())
		inner.ServeHTTP(w, r)
	})
}
