package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulation collectors, registered on the default registry so the
// /metrics handler picks them up. The tick budget is ~16.7ms; the
// histogram buckets bracket it from well under to well over.
var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kickabout",
		Name:      "rooms_active",
		Help:      "Open rooms on this instance.",
	})
	PlayersConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kickabout",
		Name:      "players_connected",
		Help:      "Players currently joined to a room.",
	})
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kickabout",
		Name:      "ticks_total",
		Help:      "Simulation ticks run.",
	})
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kickabout",
		Name:      "tick_duration_seconds",
		Help:      "Wall time spent inside one simulation tick.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
	})
	GoalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kickabout",
		Name:      "goals_total",
		Help:      "Goals scored, by team.",
	}, []string{"team"})
	TickPanics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kickabout",
		Name:      "tick_panics_total",
		Help:      "Simulation ticks abandoned by a recovered panic.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
