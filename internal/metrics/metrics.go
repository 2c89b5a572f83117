package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rawRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_raw_rows_total",
		Help: "Raw rows merged per dataset and outcome",
	}, []string{"dataset", "outcome"})

	coercionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_coercion_failures_total",
		Help: "Cells that failed type coercion per dataset",
	}, []string{"dataset"})

	datasetLoadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_dataset_load_failures_total",
		Help: "Dataset loads rejected per dataset and reason",
	}, []string{"dataset", "reason"})

	remediationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_remediations_total",
		Help: "Reference repairs per dataset and strategy",
	}, []string{"dataset", "strategy"})

	constraintViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_constraint_violations_total",
		Help: "Curated rebuilds aborted by a grain or foreign key violation",
	}, []string{"table", "kind"})

	curatedRowsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gamebot_curated_rows",
		Help: "Rows written by the last successful rebuild of a curated table",
	}, []string{"table"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamebot_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage", "status"})

	snapshotsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamebot_feature_snapshots_written_total",
		Help: "Feature snapshots written",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamebot_runs_total",
		Help: "Finished ingestion runs per status",
	}, []string{"status"})
)

// ObserveRawMerge records the outcome of one dataset merge
func ObserveRawMerge(dataset string, inserted, updated, unchanged, deleted int) {
	rawRowsTotal.WithLabelValues(dataset, "inserted").Add(float64(inserted))
	rawRowsTotal.WithLabelValues(dataset, "updated").Add(float64(updated))
	rawRowsTotal.WithLabelValues(dataset, "unchanged").Add(float64(unchanged))
	rawRowsTotal.WithLabelValues(dataset, "deleted").Add(float64(deleted))
}

// ObserveCoercionFailures records cells that failed coercion
func ObserveCoercionFailures(dataset string, n int) {
	coercionFailuresTotal.WithLabelValues(dataset).Add(float64(n))
}

// ObserveDatasetLoadFailure records a rejected dataset load
func ObserveDatasetLoadFailure(dataset, reason string) {
	datasetLoadFailuresTotal.WithLabelValues(dataset, reason).Inc()
}

// ObserveRemediation records one reference repair
func ObserveRemediation(dataset, strategy string) {
	remediationsTotal.WithLabelValues(dataset, strategy).Inc()
}

// ObserveConstraintViolation records an aborted table rebuild
func ObserveConstraintViolation(table, kind string) {
	constraintViolationsTotal.WithLabelValues(table, kind).Inc()
}

// SetCuratedRows records the size of a rebuilt table
func SetCuratedRows(table string, rows int) {
	curatedRowsGauge.WithLabelValues(table).Set(float64(rows))
}

// ObserveStage records the duration of a stage since start
func ObserveStage(stage, status string, start time.Time) {
	stageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}

// ObserveSnapshotWritten counts a feature snapshot
func ObserveSnapshotWritten() {
	snapshotsWrittenTotal.Inc()
}

// ObserveRun counts a finished run
func ObserveRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}
