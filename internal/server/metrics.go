package server

import (
	"context"
	"image"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/asset"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	acquisitions    *prometheus.CounterVec
	templateUpdates *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh
// registry, alongside the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compose_renders_total",
				Help: "Total number of render requests by template source and outcome",
			},
			[]string{"mode", "outcome"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compose_render_duration_seconds",
				Help:    "Duration of renders, including asset acquisition and encoding",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compose_asset_acquisitions_total",
				Help: "Total number of asset acquisitions by source kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		templateUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compose_template_updates_total",
				Help: "Total number of template replacements by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.renders, m.renderDuration, m.acquisitions, m.templateUpdates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Acquirer wraps next so every acquisition is counted.
func (m *Metrics) Acquirer(next compose.Acquirer) compose.Acquirer {
	return compose.AcquirerFunc(func(ctx context.Context, source string) (image.Image, error) {
		kind := "local"
		if asset.IsRemote(source) {
			kind = "remote"
		}
		img, err := next.Acquire(ctx, source)
		m.acquisitions.WithLabelValues(kind, outcome(err)).Inc()
		return img, err
	})
}

func (m *Metrics) observeRender(mode string, start time.Time, err error) {
	m.renders.WithLabelValues(mode, outcome(err)).Inc()
	m.renderDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeTemplateUpdate(err error) {
	m.templateUpdates.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
