// Metrics collection for the G-code post-processing tools.
//
// Provides counters and gauges rendered in Prometheus text format. The
// transform records into a registry only when one is attached; a nil
// registry is a no-op.
//
// Copyright (C) 2026  Sophist
//
// This file may be distributed under the terms of the GNU AGPLv3 license.

package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Labels represents metric labels as key-value pairs
type Labels map[string]string

// labelKey generates a stable map key for a label set.
func labelKey(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}

// formatLabels returns labels in Prometheus exposition format.
func formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(strings.ReplaceAll(labels[k], `"`, `\"`))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

// Metric is the common interface for all metric types.
type Metric interface {
	Name() string
	Help() string
	Write(sb *strings.Builder)
}

// Counter is a monotonically increasing value.
type Counter struct {
	mu     sync.Mutex
	name   string
	help   string
	values map[string]uint64
	labels map[string]Labels
}

// NewCounter creates a counter metric.
func NewCounter(name, help string) *Counter {
	return &Counter{
		name:   name,
		help:   help,
		values: make(map[string]uint64),
		labels: make(map[string]Labels),
	}
}

func (c *Counter) Name() string { return c.name }
func (c *Counter) Help() string { return c.help }

// Inc increments the counter by one.
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by delta.
func (c *Counter) Add(labels Labels, delta uint64) {
	key := labelKey(labels)
	c.mu.Lock()
	c.values[key] += delta
	c.labels[key] = labels
	c.mu.Unlock()
}

// Get returns the current value for a label set.
func (c *Counter) Get(labels Labels) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[labelKey(labels)]
}

// Write renders the counter in Prometheus text format.
func (c *Counter) Write(sb *strings.Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(sb, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(sb, "# TYPE %s counter\n", c.name)
	for _, key := range sortedKeys(c.values) {
		fmt.Fprintf(sb, "%s%s %d\n", c.name, formatLabels(c.labels[key]), c.values[key])
	}
}

// Gauge is a value that can go up and down.
type Gauge struct {
	mu     sync.Mutex
	name   string
	help   string
	values map[string]float64
	labels map[string]Labels
}

// NewGauge creates a gauge metric.
func NewGauge(name, help string) *Gauge {
	return &Gauge{
		name:   name,
		help:   help,
		values: make(map[string]float64),
		labels: make(map[string]Labels),
	}
}

func (g *Gauge) Name() string { return g.name }
func (g *Gauge) Help() string { return g.help }

// Set sets the gauge to a value.
func (g *Gauge) Set(labels Labels, value float64) {
	key := labelKey(labels)
	g.mu.Lock()
	g.values[key] = value
	g.labels[key] = labels
	g.mu.Unlock()
}

// Add increments the gauge by delta.
func (g *Gauge) Add(labels Labels, delta float64) {
	key := labelKey(labels)
	g.mu.Lock()
	g.values[key] += delta
	g.labels[key] = labels
	g.mu.Unlock()
}

// Get returns the current value for a label set.
func (g *Gauge) Get(labels Labels) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.values[labelKey(labels)]
}

// Write renders the gauge in Prometheus text format.
func (g *Gauge) Write(sb *strings.Builder) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fmt.Fprintf(sb, "# HELP %s %s\n", g.name, g.help)
	fmt.Fprintf(sb, "# TYPE %s gauge\n", g.name)
	for _, key := range sortedKeys(g.values) {
		fmt.Fprintf(sb, "%s%s %s\n", g.name, formatLabels(g.labels[key]), formatFloat(g.values[key]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Registry holds a set of metrics.
type Registry struct {
	mu      sync.Mutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry.
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metrics[metric.Name()]; ok {
		return fmt.Errorf("metric %s already registered", metric.Name())
	}
	r.metrics[metric.Name()] = metric
	r.order = append(r.order, metric.Name())
	return nil
}

// Counter returns the named counter, registering it on first use.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[name]; ok {
		if c, ok := m.(*Counter); ok {
			return c
		}
	}
	c := NewCounter(name, help)
	r.metrics[name] = c
	r.order = append(r.order, name)
	return c
}

// Gauge returns the named gauge, registering it on first use.
func (r *Registry) Gauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[name]; ok {
		if g, ok := m.(*Gauge); ok {
			return g
		}
	}
	g := NewGauge(name, help)
	r.metrics[name] = g
	r.order = append(r.order, name)
	return g
}

// Gather renders all registered metrics in Prometheus text format.
func (r *Registry) Gather() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}
