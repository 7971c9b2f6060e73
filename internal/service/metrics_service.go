package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campus-ops/reflow-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the planning engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	plansGenerated   prometheus.Counter
	sessionsAssigned prometheus.Counter
	planConflicts    *prometheus.CounterVec
	assignmentScore  prometheus.Histogram
	exportJobs       *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_cache_latency_seconds",
		Help:    "Latency for plan cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_cache_hits_total",
		Help: "Total plan cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_cache_misses_total",
		Help: "Total plan cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	plansGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reallocation_plans_total",
		Help: "Total reallocation plans generated, resumes included",
	})

	sessionsAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reallocation_sessions_assigned_total",
		Help: "Total sessions successfully relocated",
	})

	planConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reallocation_conflicts_total",
		Help: "Total unplaceable sessions by reason",
	}, []string{"reason"})

	assignmentScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reallocation_assignment_score",
		Help:    "Score distribution of accepted assignments",
		Buckets: []float64{50, 60, 70, 80, 90, 100},
	})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Export jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits,
		cacheMisses, dbQueryDuration, plansGenerated, sessionsAssigned,
		planConflicts, assignmentScore, exportJobs, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
		plansGenerated:   plansGenerated,
		sessionsAssigned: sessionsAssigned,
		planConflicts:    planConflicts,
		assignmentScore:  assignmentScore,
		exportJobs:       exportJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request duration and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a plan cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObservePlan records the outcome of a planning run.
func (m *MetricsService) ObservePlan(plan *models.Plan) {
	if m == nil || plan == nil {
		return
	}
	m.plansGenerated.Inc()
	m.sessionsAssigned.Add(float64(len(plan.Assignments)))
	for _, assignment := range plan.Assignments {
		m.assignmentScore.Observe(float64(assignment.Score))
	}
	for _, conflict := range plan.Conflicts {
		m.planConflicts.WithLabelValues(string(conflict.Reason)).Inc()
	}
}

// ObserveExportJob records an export job reaching a terminal status.
func (m *MetricsService) ObserveExportJob(status models.ExportStatus) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(string(status)).Inc()
}
