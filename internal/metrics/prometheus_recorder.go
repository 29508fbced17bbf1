package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	records        prom.Gauge
	renderDuration *prom.HistogramVec
	pageResults    *prom.CounterVec
	slugCollisions prom.Counter
	runDuration    prom.Histogram
	runOutcomes    *prom.CounterVec
}

// NewPrometheusRecorder constructs the run metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		records: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pagegen",
			Name:      "records",
			Help:      "Records normalized from the input dataset",
		}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pagegen",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a single page",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagegen",
			Name:      "pages_total",
			Help:      "Pages rendered and written, by kind and result",
		}, []string{"kind", "result"}),
		slugCollisions: prom.NewCounter(prom.CounterOpts{
			Namespace: "pagegen",
			Name:      "slug_collisions_total",
			Help:      "Detail pages that overwrote a page written earlier in the same run",
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pagegen",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagegen",
			Name:      "run_outcomes_total",
			Help:      "Generation runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.records, pr.renderDuration, pr.pageResults, pr.slugCollisions, pr.runDuration, pr.runOutcomes)
	return pr
}

// Registry exposes the registry the metrics live on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// WriteTextfile writes the current metric values in the text exposition
// format, for collection by node_exporter's textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

func (p *PrometheusRecorder) SetRecords(n int) {
	if p == nil {
		return
	}
	p.records.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveRenderDuration(kind PageKind, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(kind PageKind, result ResultLabel) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(string(kind), string(result)).Inc()
}

func (p *PrometheusRecorder) IncSlugCollision() {
	if p == nil {
		return
	}
	p.slugCollisions.Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(result ResultLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(result)).Inc()
}
