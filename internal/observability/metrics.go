package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeSessions  prometheus.Gauge
	storeOpsTotal   *prometheus.CounterVec
	storeMissTotal  *prometheus.CounterVec
	evictionsTotal  prometheus.Counter
	admissionTotal  *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	solveTotal      *prometheus.CounterVec
	toolExecTotal   *prometheus.CounterVec
	toolExecSeconds *prometheus.HistogramVec
	agentRunTotal   *prometheus.CounterVec
	agentRunSeconds *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "context_active_sessions",
					Help: "Current session context entries held in memory.",
				},
			),
			storeOpsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "context_store_ops_total",
					Help: "Total context store operations by operation.",
				},
				[]string{"op"},
			),
			storeMissTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "context_store_miss_total",
					Help: "Total context store lookups that found no session, by operation.",
				},
				[]string{"op"},
			),
			evictionsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "context_evictions_total",
					Help: "Total session contexts removed by age-based eviction.",
				},
			),
			admissionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "admission_checks_total",
					Help: "Total complexity validations by outcome.",
				},
				[]string{"outcome"},
			),
			solveDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "solve_duration_seconds",
					Help:    "Remote solve call duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			solveTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "solve_total",
					Help: "Total remote solve calls by status.",
				},
				[]string{"status"},
			),
			toolExecTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_execution_total",
					Help: "Total assistant tool executions by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolExecSeconds: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_execution_duration_seconds",
					Help:    "Assistant tool execution duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
			agentRunTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agent_run_total",
					Help: "Total agent runs by provider and status.",
				},
				[]string{"provider", "status"},
			),
			agentRunSeconds: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agent_run_duration_seconds",
					Help:    "Agent run duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
		}

		prometheus.MustRegister(
			m.activeSessions,
			m.storeOpsTotal,
			m.storeMissTotal,
			m.evictionsTotal,
			m.admissionTotal,
			m.solveDuration,
			m.solveTotal,
			m.toolExecTotal,
			m.toolExecSeconds,
			m.agentRunTotal,
			m.agentRunSeconds,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func SetActiveSessions(count int) {
	getMetrics().activeSessions.Set(float64(count))
}

func RecordStoreOp(op string) {
	getMetrics().storeOpsTotal.WithLabelValues(op).Inc()
}

func RecordStoreMiss(op string) {
	getMetrics().storeMissTotal.WithLabelValues(op).Inc()
}

func RecordEvictions(count int) {
	if count > 0 {
		getMetrics().evictionsTotal.Add(float64(count))
	}
}

func RecordAdmission(valid bool) {
	outcome := "rejected"
	if valid {
		outcome = "accepted"
	}
	getMetrics().admissionTotal.WithLabelValues(outcome).Inc()
}

func RecordSolve(duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.solveTotal.WithLabelValues(status).Inc()
	m.solveDuration.Observe(duration.Seconds())
}

func RecordToolExecution(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.toolExecTotal.WithLabelValues(tool, status).Inc()
	m.toolExecSeconds.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordAgentRun(provider string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.agentRunTotal.WithLabelValues(provider, status).Inc()
	m.agentRunSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}
