package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vitals_http_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vitals_http_in_flight",
		Help: "In-flight HTTP requests",
	})

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_evaluations_total",
			Help: "Snapshot evaluations by result",
		}, []string{"result"},
	)
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vitals_evaluation_duration_seconds",
		Help:    "Time spent evaluating one snapshot, notifier deliveries included",
		Buckets: []float64{.00001, .0001, .001, .01, .1, 1, 5, 15},
	})
	ViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_violations_total",
			Help: "Out-of-range readings by rule",
		}, []string{"rule"},
	)
	SkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_rules_skipped_total",
			Help: "Rules skipped because the snapshot had no value for them",
		}, []string{"rule"},
	)
	RuleReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitals_rule_reloads_total",
			Help: "Custom rule reloads by source and outcome",
		}, []string{"source", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal, Latency, InFlight,
		EvaluationsTotal, EvaluationDuration, ViolationsTotal, SkippedTotal, RuleReloadsTotal,
	)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

// PromRecorder feeds engine telemetry into the package collectors.
type PromRecorder struct{}

func (PromRecorder) ObserveEvaluation(ok bool, took time.Duration) {
	result := "ok"
	if !ok {
		result = "violation"
	}
	EvaluationsTotal.WithLabelValues(result).Inc()
	EvaluationDuration.Observe(took.Seconds())
}

func (PromRecorder) ObserveViolation(rule string) { ViolationsTotal.WithLabelValues(rule).Inc() }
func (PromRecorder) ObserveSkipped(rule string)   { SkippedTotal.WithLabelValues(rule).Inc() }

// ObserveReload counts a custom rule reload from source ("postgres" or "file").
func ObserveReload(source string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	RuleReloadsTotal.WithLabelValues(source, status).Inc()
}

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}
