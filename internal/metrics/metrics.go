// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the report pipeline.
//
//   - Backend is a narrow interface focused on counters and timings.
//   - A global, pluggable backend defaults to a no-op implementation, so
//     metrics are always safe to call even when nothing is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages;
//     the rest of the code depends only on this package.
//
// The pipeline records one step metric per stage (load_products, aggregate,
// write_report, save_report) and row counters per input and outcome.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal        = "purchase_step_total"
	StepDuration     = "purchase_step_duration_seconds"
	RowsTotal        = "purchase_rows_total"
	ReportLinesTotal = "purchase_report_lines_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() { backend = nopBackend{} }

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one pipeline stage.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for one input and outcome.
//
// Typical kinds:
//   - "read"
//   - "accepted"
//   - "rejected"
//   - "rejected_<reject kind>", e.g. "rejected_unknown_product"
func RecordRows(job, input, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":   job,
		"input": input,
		"kind":  kind,
	})
}

// RecordReportLines counts department lines written to the report.
func RecordReportLines(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(ReportLinesTotal, float64(delta), Labels{
		"job": job,
	})
}
