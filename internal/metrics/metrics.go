package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all flowplan collectors on a private Prometheus registry.
type Registry struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Workspaces
	WorkspacesCreated    prometheus.Counter
	WorkspacesExpired    prometheus.Counter
	WorkspaceMutations   *prometheus.CounterVec
	WorkspacesInProgress prometheus.Gauge

	// Reports
	ReportsComputed      prometheus.Counter
	ReportCacheLookups   *prometheus.CounterVec
	ReportDevicesOver    prometheus.Histogram
	ReportComputeSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector initialized, plus the Go and
// process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initHTTPMetrics()
	r.initWorkspaceMetrics()
	r.initReportMetrics()
	return r
}

// Prometheus returns the underlying Prometheus registry (for promhttp).
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowplan_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	r.HTTPRequestsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowplan_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initWorkspaceMetrics() {
	f := promauto.With(r.registry)

	r.WorkspacesCreated = f.NewCounter(prometheus.CounterOpts{
		Name: "flowplan_workspaces_created_total",
		Help: "Workspaces created for new sessions",
	})
	r.WorkspacesExpired = f.NewCounter(prometheus.CounterOpts{
		Name: "flowplan_workspaces_expired_total",
		Help: "Idle workspaces dropped by the sweeper",
	})
	r.WorkspaceMutations = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplan_workspace_mutations_total",
			Help: "Workspace mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	r.WorkspacesInProgress = f.NewGauge(prometheus.GaugeOpts{
		Name: "flowplan_workspace_mutations_in_progress",
		Help: "Workspace mutations currently holding a workspace lock",
	})
}

func (r *Registry) initReportMetrics() {
	f := promauto.With(r.registry)

	r.ReportsComputed = f.NewCounter(prometheus.CounterOpts{
		Name: "flowplan_reports_computed_total",
		Help: "Usage reports computed (cache misses that ran the accounting pass)",
	})
	r.ReportCacheLookups = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowplan_report_cache_lookups_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)
	r.ReportDevicesOver = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowplan_report_devices_over_capacity",
		Help:    "Devices flagged over capacity per computed report",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})
	r.ReportComputeSeconds = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowplan_report_compute_seconds",
		Help:    "Time spent computing a usage report",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
}

// RecordHTTPRequest records one handled request.
func (r *Registry) RecordHTTPRequest(method, route, status string, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordMutation records a workspace mutation outcome ("ok", "invalid", "conflict", "error").
func (r *Registry) RecordMutation(op, outcome string) {
	r.WorkspaceMutations.WithLabelValues(op, outcome).Inc()
}

// RecordReport records a freshly computed report.
func (r *Registry) RecordReport(overCapacity int, d time.Duration) {
	r.ReportsComputed.Inc()
	r.ReportDevicesOver.Observe(float64(overCapacity))
	r.ReportComputeSeconds.Observe(d.Seconds())
}

// RecordCacheLookup records a report cache hit or miss.
func (r *Registry) RecordCacheLookup(hit bool) {
	if hit {
		r.ReportCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.ReportCacheLookups.WithLabelValues("miss").Inc()
}
