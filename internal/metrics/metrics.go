// Package metrics exports pass statistics in the Prometheus text format,
// for batch pipelines that scrape a textfile after each run.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"qgraph/internal/driver"
	"qgraph/internal/observ"
)

const namespace = "qgraph"

// Recorder accumulates metrics for one CLI invocation.
type Recorder struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	methods  *prometheus.CounterVec
	edits    *prometheus.CounterVec
	diags    *prometheus.CounterVec
	phases   *prometheus.HistogramVec
	lastRun  *prometheus.GaugeVec
	timeFunc func() time.Time
}

// NewRecorder returns a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_runs_total",
			Help:      "Driver runs by pass.",
		}, []string{"pass"}),
		methods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "methods_processed_total",
			Help:      "Methods processed by pass.",
		}, []string{"pass"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_edits_total",
			Help:      "Per-method pass tallies, such as inserted observers and quant/dequant pairs.",
		}, []string{"pass", "method", "kind"}),
		diags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported by pass, severity and code.",
		}, []string{"pass", "severity", "code"}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of one pass phase over one method.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"phase"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run by pass.",
		}, []string{"pass"}),
		timeFunc: time.Now,
	}
	r.reg.MustRegister(r.runs, r.methods, r.edits, r.diags, r.phases, r.lastRun)
	return r
}

// Record adds the outcome of one driver run.
func (r *Recorder) Record(pass string, res *driver.Result) {
	if r == nil || res == nil {
		return
	}
	r.runs.WithLabelValues(pass).Inc()
	r.methods.WithLabelValues(pass).Add(float64(len(res.Methods)))
	for _, m := range res.Methods {
		kinds := make([]string, 0, len(m.Counts))
		for k := range m.Counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			r.edits.WithLabelValues(pass, m.Method, k).Add(float64(m.Counts[k]))
		}
	}
	if res.Bag != nil {
		for _, d := range res.Bag.Items() {
			r.diags.WithLabelValues(pass, strings.ToLower(d.Severity.String()), d.Code.ID()).Inc()
		}
	}
	r.lastRun.WithLabelValues(pass).Set(float64(r.timeFunc().Unix()))
}

// RecordTimings observes the duration of every phase recorded by t.
func (r *Recorder) RecordTimings(t *observ.Timer) {
	if r == nil || t == nil {
		return
	}
	for _, p := range t.Report().Phases {
		r.phases.WithLabelValues(p.Name).Observe(p.DurationMS / 1000)
	}
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteFile writes the metrics atomically to path in the text exposition
// format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
