// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SeatedPlayers  prometheus.Gauge
	Turns          *prometheus.CounterVec
	TurnLatency    prometheus.Histogram
	ManualActions  *prometheus.CounterVec
	DealerFailures *prometheus.CounterVec
	RoundPhase     *prometheus.GaugeVec
	GamesEnded     prometheus.Counter
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SeatedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seated_players",
			Help:      "Number of players registered with this agent",
		}),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Turn decisions by resulting action",
		}, []string{"action"}),
		TurnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_seconds",
			Help:      "Time spent deciding and applying a turn",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ManualActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_actions_total",
			Help:      "Externally driven bet/fold/show calls",
		}, []string{"action"}),
		DealerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dealer_failures_total",
			Help:      "Failed calls to the dealer service",
		}, []string{"operation"}),
		RoundPhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "round_phase",
			Help:      "1 for the current round phase, 0 otherwise",
		}, []string{"phase"}),
		GamesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_ended_total",
			Help:      "Number of end_game calls",
		}),
	}

	reg.MustRegister(
		m.SeatedPlayers,
		m.Turns,
		m.TurnLatency,
		m.ManualActions,
		m.DealerFailures,
		m.RoundPhase,
		m.GamesEnded,
	)

	return m
}

// Monitor owns its own registry so several instances can coexist in one process.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	reg := prometheus.NewRegistry()
	m := &Monitor{
		metrics:   NewMetrics(namespace, reg),
		registry:  reg,
		startTime: time.Now(),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the agent started",
		}, func() float64 {
			return time.Since(m.startTime).Seconds()
		}),
	)
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler serves the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Monitor) SetSeatedPlayers(count int) {
	m.metrics.SeatedPlayers.Set(float64(count))
}

func (m *Monitor) ObserveTurn(action string, duration time.Duration) {
	m.metrics.Turns.WithLabelValues(action).Inc()
	m.metrics.TurnLatency.Observe(duration.Seconds())
}

func (m *Monitor) IncManualAction(action string) {
	m.metrics.ManualActions.WithLabelValues(action).Inc()
}

func (m *Monitor) IncDealerFailure(operation string) {
	m.metrics.DealerFailures.WithLabelValues(operation).Inc()
}

func (m *Monitor) IncGamesEnded() {
	m.metrics.GamesEnded.Inc()
}

func (m *Monitor) SetPhase(from, to string) {
	if from != "" {
		m.metrics.RoundPhase.WithLabelValues(from).Set(0)
	}
	m.metrics.RoundPhase.WithLabelValues(to).Set(1)
}
