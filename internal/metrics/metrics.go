// Package metrics provides Prometheus instrumentation for the hit
// prediction pipeline: dataset volumes at each stage, training cost, and the
// evaluation outcome, exposed via the standard metrics endpoint when one is
// configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	RowsLoaded    prometheus.Counter // raw event rows read from the source
	RowsFiltered  prometheus.Counter // rows dropped by the null filter
	RowsSampled   prometheus.Counter // rows entering the train/eval split
	Predictions   prometheus.Counter // predictions made on the eval partition
	PipelineRuns  prometheus.Counter // completed pipeline runs
	Errors        prometheus.Counter // failed pipeline runs
	TrainDuration prometheus.Histogram
	Accuracy      prometheus.Gauge
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, keeping tests
// isolated from the global one.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		RowsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_loaded_total",
			Help: "Raw event rows read from the data source",
		}),
		RowsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_filtered_total",
			Help: "Rows removed by null and sentinel filtering",
		}),
		RowsSampled: factory.NewCounter(prometheus.CounterOpts{
			Name: "rows_sampled_total",
			Help: "Rows entering the train/eval split",
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Predictions made on the evaluation partition",
		}),
		PipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Completed pipeline runs",
		}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Pipeline runs aborted by an error",
		}),
		TrainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "train_duration_seconds",
			Help:    "Wall time spent training the forest",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Accuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eval_accuracy",
			Help: "Accuracy of the last evaluation",
		}),
	}
}
