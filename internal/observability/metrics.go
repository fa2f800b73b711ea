package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "choropleth"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// choropleth session.
type Metrics struct {
	FramesRendered   prometheus.Counter
	RenderErrors     prometheus.Counter
	RenderDuration   prometheus.Histogram
	SessionRunning   prometheus.Gauge
	Events           *prometheus.CounterVec // labels: kind={variable,scrub,step,play,click,hover}
	CommandsRejected *prometheus.CounterVec // labels: kind

	// Autoplay metrics.
	AutoplayTicks   prometheus.Counter
	AutoplayRunning prometheus.Gauge

	// Frame cache and publishing metrics.
	FrameCache     *prometheus.CounterVec // labels: result={hit,miss}
	ViewsPublished prometheus.Counter
	PublishErrors  prometheus.Counter

	// Dataset metrics, set once at load.
	ObservationsLoaded prometheus.Gauge
	DuplicateRows      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.FramesRendered,
		m.RenderErrors,
		m.RenderDuration,
		m.SessionRunning,
		m.Events,
		m.CommandsRejected,
		m.AutoplayTicks,
		m.AutoplayRunning,
		m.FrameCache,
		m.ViewsPublished,
		m.PublishErrors,
		m.ObservationsLoaded,
		m.DuplicateRows,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      help("Total frames computed by the visual state engine."),
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      help("Total render failures."),
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      help("Duration of a full frame recomputation."),
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		SessionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_running",
			Help:      help("1 when the session loop is active, 0 when shut down."),
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ui_events_total",
			Help:      help("User commands handled, by kind."),
		}, []string{"kind"}),
		CommandsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ui_events_rejected_total",
			Help:      help("User commands rejected, by kind."),
		}, []string{"kind"}),
		AutoplayTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autoplay_ticks_total",
			Help:      help("Time steps advanced by autoplay."),
		}),
		AutoplayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "autoplay_running",
			Help:      help("1 while autoplay is playing, 0 while paused."),
		}),
		FrameCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_cache_total",
			Help:      help("Frame cache lookups by result."),
		}, []string{"result"}),
		ViewsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_published_total",
			Help:      help("Views handed to sinks successfully."),
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Views a sink failed to accept."),
		}),
		ObservationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations_loaded",
			Help:      help("Unique (region, period, variable) observations in the store."),
		}),
		DuplicateRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_rows",
			Help:      help("Input rows that overwrote an earlier row with the same key."),
		}),
	}
}
