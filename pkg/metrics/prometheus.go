package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
// Metrics are registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	assignments      *prometheus.CounterVec
	unassigned       *prometheus.CounterVec
	squadsCreated    prometheus.Counter
	manualPlacements *prometheus.CounterVec
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace (defaults to "squads" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "squads"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "runs_total",
			Help:      "Total bulk allocation runs by result (success, partial, dry_run, error).",
		}, []string{"result"})

		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "run_duration_seconds",
			Help:      "Duration of bulk allocation runs in seconds, including storage.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		})

		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "assignments_total",
			Help:      "Total athletes seated in squads by discipline.",
		}, []string{"discipline"})

		p.unassigned = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "unassigned_total",
			Help:      "Total athletes left without a squad by discipline and reason.",
		}, []string{"discipline", "reason"})

		p.squadsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "squads_created_total",
			Help:      "Total squads created by allocation runs.",
		})

		p.manualPlacements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "placement",
			Name:      "requests_total",
			Help:      "Total single-athlete placements by result.",
		}, []string{"result"})

		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.runDuration)
		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.unassigned)
		p.reg.MustRegister(p.squadsCreated)
		p.reg.MustRegister(p.manualPlacements)
	})
}

// RecordAllocationRun counts a run and observes its duration.
func (p *PrometheusCollector) RecordAllocationRun(result string, duration time.Duration) {
	p.ensureRegistered()
	p.runs.WithLabelValues(result).Inc()
	p.runDuration.Observe(duration.Seconds())
}

// RecordAssignments adds seated athletes for a discipline.
func (p *PrometheusCollector) RecordAssignments(discipline string, count int) {
	p.ensureRegistered()
	p.assignments.WithLabelValues(discipline).Add(float64(count))
}

// RecordUnassigned adds unassigned athletes for a discipline and reason.
func (p *PrometheusCollector) RecordUnassigned(discipline, reason string, count int) {
	p.ensureRegistered()
	p.unassigned.WithLabelValues(discipline, reason).Add(float64(count))
}

// RecordSquadsCreated adds created squads.
func (p *PrometheusCollector) RecordSquadsCreated(count int) {
	p.ensureRegistered()
	p.squadsCreated.Add(float64(count))
}

// RecordManualPlacement counts a single-athlete placement outcome.
func (p *PrometheusCollector) RecordManualPlacement(result string) {
	p.ensureRegistered()
	p.manualPlacements.WithLabelValues(result).Inc()
}
