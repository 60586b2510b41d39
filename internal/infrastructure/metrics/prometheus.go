package metrics

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// Collector implements ports.MetricsCollector on a private Prometheus
// registry. Vectors are created on first use; the label names of a metric
// are fixed by its first observation.
type Collector struct {
	registry *prometheus.Registry
	logger   ports.Logger

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labelNames map[string][]string
}

// NewCollector creates a collector with its own registry.
func NewCollector(logger ports.Logger) *Collector {
	return &Collector{
		registry:   prometheus.NewRegistry(),
		logger:     logger,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labelNames: make(map[string][]string),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// IncCounter implements ports.MetricsCollector.
func (c *Collector) IncCounter(ctx context.Context, name string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help(name)}, c.bindLabels(name, labels))
		if !c.register(ctx, name, vec) {
			return
		}
		c.counters[name] = vec
	}
	m, err := vec.GetMetricWith(labels)
	if err != nil {
		c.warn(ctx, name, err)
		return
	}
	m.Inc()
}

// SetGauge implements ports.MetricsCollector.
func (c *Collector) SetGauge(ctx context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help(name)}, c.bindLabels(name, labels))
		if !c.register(ctx, name, vec) {
			return
		}
		c.gauges[name] = vec
	}
	m, err := vec.GetMetricWith(labels)
	if err != nil {
		c.warn(ctx, name, err)
		return
	}
	m.Set(value)
}

// ObserveHistogram implements ports.MetricsCollector.
func (c *Collector) ObserveHistogram(ctx context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help(name),
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, c.bindLabels(name, labels))
		if !c.register(ctx, name, vec) {
			return
		}
		c.histograms[name] = vec
	}
	m, err := vec.GetMetricWith(labels)
	if err != nil {
		c.warn(ctx, name, err)
		return
	}
	m.Observe(value)
}

func (c *Collector) bindLabels(name string, labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c.labelNames[name] = keys
	return keys
}

func (c *Collector) register(ctx context.Context, name string, collector prometheus.Collector) bool {
	if err := c.registry.Register(collector); err != nil {
		c.warn(ctx, name, err)
		return false
	}
	return true
}

func (c *Collector) warn(ctx context.Context, name string, err error) {
	if c.logger != nil {
		c.logger.Warn(ctx, "metric dropped", "metric", name, "error", err)
	}
}

func help(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "cadence_"), "_", " ")
}

var _ ports.MetricsCollector = (*Collector)(nil)
