// Package metrics records run statistics on a private Prometheus registry and
// writes them in the text exposition format, suitable for a node exporter
// textfile collector.
package metrics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "etl_bridge"

// Collector captures operation outcomes. A nil *Collector discards everything.
type Collector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	nodes      *prometheus.CounterVec
	issues     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewCollector initializes a new metrics registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "operations_total", Help: "Processed files by operation and status"},
			[]string{"operation", "status"},
		),
		nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "nodes_total", Help: "Converted and skipped nodes by direction"},
			[]string{"direction", "outcome"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "validation_issues_total", Help: "Validation issues by severity"},
			[]string{"severity"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Per file operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(c.operations, c.nodes, c.issues, c.duration)
	return c
}

// ObserveOperation records one processed file
func (c *Collector) ObserveOperation(operation, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(operation, status).Inc()
	c.duration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveConversion records node outcomes for a conversion direction
func (c *Collector) ObserveConversion(direction string, converted, skipped int) {
	if c == nil {
		return
	}
	c.nodes.WithLabelValues(direction, "converted").Add(float64(converted))
	c.nodes.WithLabelValues(direction, "skipped").Add(float64(skipped))
}

// ObserveIssues adds validation issue counts keyed by severity name
func (c *Collector) ObserveIssues(counts map[string]int) {
	if c == nil {
		return
	}
	for severity, n := range counts {
		c.issues.WithLabelValues(severity).Add(float64(n))
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Encode renders all metrics in the text exposition format
func (c *Collector) Encode() ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: metrics collector", errors.ErrNotInitialized)
	}
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Write writes all metrics to a Prometheus text file
func (c *Collector) Write(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %s", errors.ErrFileWriteError, path, err.Error())
	}
	return nil
}
