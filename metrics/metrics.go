// Package metrics instruments the Apply/Commit Driver with Prometheus
// collectors, following the same registration shape as the teacher corpus's
// internal/metrics/prometheus.go: one struct holding pre-built collectors,
// constructed once against a Registerer and exposing small increment/observe
// methods rather than leaking prometheus types into callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records counts and durations for one applier run.
type Collector struct {
	patchesApplied *prometheus.CounterVec
	patchesSkipped prometheus.Counter
	applyDuration  prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		patchesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitam_patches_applied_total",
			Help: "Total number of patches committed to HEAD.",
		}, []string{"result"}),
		patchesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitam_patches_skipped_total",
			Help: "Total number of patches skipped (Mail System Internal Data or absent files).",
		}),
		applyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitam_apply_duration_seconds",
			Help:    "Wall-clock time to apply a single patch to the index.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.patchesApplied, c.patchesSkipped, c.applyDuration)
	return c
}

// PatchApplied records a successfully committed patch.
func (c *Collector) PatchApplied() {
	c.patchesApplied.WithLabelValues("success").Inc()
}

// PatchFailed records a patch whose apply or commit step failed.
func (c *Collector) PatchFailed() {
	c.patchesApplied.WithLabelValues("failure").Inc()
}

// PatchSkipped records a patch that advanced the cursor without a commit.
func (c *Collector) PatchSkipped() {
	c.patchesSkipped.Inc()
}

// ObserveApplyDuration records how long applying one patch to the index took.
func (c *Collector) ObserveApplyDuration(d time.Duration) {
	c.applyDuration.Observe(d.Seconds())
}
