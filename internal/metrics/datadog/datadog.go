// Package datadog ships pipeline metrics to a DogStatsD agent.
//
// Step, row and report-line metrics become Datadog counts and histograms.
// The run's job is attached once as a client-wide tag; the remaining labels
// (step, status, input, kind) become per-metric tags.
package datadog

import (
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"purchaseanalytics/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace prefixes every metric name, e.g. "shop.".
	Namespace string

	// Job, when set, is sent as the client-wide tag "job:<Job>" and the
	// per-metric job label is dropped.
	Job string

	// GlobalTags are extra client-wide tags, e.g. "env:prod".
	GlobalTags []string
}

// Backend implements metrics.Backend on a statsd client.
type Backend struct {
	client  *statsd.Client
	dropJob bool
}

// NewBackend builds a client for cfg.Addr. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	c, err := statsd.New(cfg.Addr, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c, dropJob: cfg.Job != ""}, nil
}

func clientOptions(cfg Config) []statsd.Option {
	opts := []statsd.Option{statsd.WithoutTelemetry()}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	tags := append([]string(nil), cfg.GlobalTags...)
	if cfg.Job != "" {
		tags = append(tags, "job:"+cfg.Job)
	}
	if len(tags) > 0 {
		opts = append(opts, statsd.WithTags(tags))
	}
	return opts
}

// IncCounter sends a count; fractional deltas are truncated.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), b.tags(labels), 1)
}

// ObserveHistogram sends a histogram sample.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, b.tags(labels), 1)
}

// Flush sends buffered metrics and closes the client. The backend is
// flushed once, at the end of a run.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func (b *Backend) tags(lbls metrics.Labels) []string {
	if b.dropJob {
		return labelsToTags(lbls, "job")
	}
	return labelsToTags(lbls)
}

// labelsToTags renders labels as sorted "key:value" tags, skipping the
// listed keys and empty values.
func labelsToTags(lbls metrics.Labels, skip ...string) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
next:
	for k, v := range lbls {
		if v == "" {
			continue
		}
		for _, s := range skip {
			if k == s {
				continue next
			}
		}
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
