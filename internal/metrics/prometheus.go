package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus keeps its own registry so several instances (tests, servers)
// never collide on global registration.
type Prometheus struct {
	registry    *prometheus.Registry
	dispatches  *prometheus.CounterVec
	dispatchDur *prometheus.HistogramVec
	feeDur      *prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stablepay",
				Name:      "commands_total",
				Help:      "Dispatched commands by skill and outcome kind.",
			},
			[]string{"skill", "outcome"},
		),
		dispatchDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stablepay",
				Name:      "command_duration_seconds",
				Help:      "Time to resolve a command into a reply.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"skill"},
		),
		feeDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stablepay",
				Name:      "fee_estimate_duration_seconds",
				Help:      "Fee estimator latency by chain and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"chain", "status"},
		),
	}
	reg.MustRegister(
		p.dispatches,
		p.dispatchDur,
		p.feeDur,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveDispatch(skill, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.dispatches.WithLabelValues(skill, outcome).Inc()
	p.dispatchDur.WithLabelValues(skill).Observe(d.Seconds())
}

func (p *Prometheus) ObserveFeeEstimate(chain, status string, d time.Duration) {
	if p == nil {
		return
	}
	p.feeDur.WithLabelValues(chain, status).Observe(d.Seconds())
}

func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
