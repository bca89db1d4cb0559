// Package metrics has the transfer instrumentation.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records the transfer metrics.
type Recorder interface {
	// ObserveTransferRun records a finished orchestrator run.
	ObserveTransferRun(status string, attempts int, duration time.Duration)
	// IncTransferAttempt records a transfer task attempt by its final task status.
	IncTransferAttempt(status string)
	// SetActiveTasks records the last ACTIVE task count seen on admission control.
	SetActiveTasks(n int)
	// ObserveThrottleWait records the time spent waiting for admission.
	ObserveThrottleWait(duration time.Duration)
}

// Noop is a recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObserveTransferRun(string, int, time.Duration) {}
func (noop) IncTransferAttempt(string)                     {}
func (noop) SetActiveTasks(int)                            {}
func (noop) ObserveThrottleWait(time.Duration)             {}

const namespace = "xferctl"

// PrometheusRecorder is a Recorder backed by Prometheus collectors.
type PrometheusRecorder struct {
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runAttempts  prometheus.Histogram
	attempts     *prometheus.CounterVec
	activeTasks  prometheus.Gauge
	throttleWait prometheus.Histogram
}

// NewPrometheusRecorder creates a new recorder and registers its collectors.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PrometheusRecorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_runs_total",
			Help:      "Total number of transfer runs by final status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_run_duration_seconds",
			Help:      "Transfer run duration in seconds",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200, 14400, 43200},
		}, []string{"status"}),
		runAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_run_attempts",
			Help:      "Number of task submissions made by a transfer run",
			Buckets:   []float64{1, 2, 3, 5, 10},
		}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_attempts_total",
			Help:      "Total number of transfer task attempts by final task status",
		}, []string{"status"}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tasks",
			Help:      "Active tasks on the transfer service seen by the last admission check",
		}),
		throttleWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "throttle_wait_duration_seconds",
			Help:      "Time spent waiting for admission before a submission",
			Buckets:   []float64{0, 10, 30, 60, 300, 900, 1800, 3600},
		}),
	}

	for _, c := range []prometheus.Collector{r.runs, r.runDuration, r.runAttempts, r.attempts, r.activeTasks, r.throttleWait} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("could not register collector: %w", err)
		}
	}

	return r, nil
}

func (r *PrometheusRecorder) ObserveTransferRun(status string, attempts int, duration time.Duration) {
	r.runs.WithLabelValues(status).Inc()
	r.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	r.runAttempts.Observe(float64(attempts))
}

func (r *PrometheusRecorder) IncTransferAttempt(status string) {
	r.attempts.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) SetActiveTasks(n int) {
	r.activeTasks.Set(float64(n))
}

func (r *PrometheusRecorder) ObserveThrottleWait(duration time.Duration) {
	r.throttleWait.Observe(duration.Seconds())
}

// WriteToTextfile dumps the gathered metrics in the text exposition format, ready to
// be picked by a node exporter textfile collector. The file is replaced atomically.
func WriteToTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("could not write metrics textfile: %w", err)
	}
	return nil
}
