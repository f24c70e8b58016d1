package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	StatusTransitionsTotal *prometheus.CounterVec
	EMICalculationsTotal   prometheus.Counter
	VersionConflictsTotal  prometheus.Counter
	DocumentUploadsTotal   prometheus.Counter
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_origination_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		StatusTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_origination_status_transitions_total",
				Help: "Total number of loan application status transitions, by target status and outcome.",
			},
			[]string{"to_status", "outcome"},
		),
		EMICalculationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_emi_calculations_total",
				Help: "Total number of EMI schedule calculations served.",
			},
		),
		VersionConflictsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_version_conflicts_total",
				Help: "Total number of optimistic-lock conflicts observed.",
			},
		),
		DocumentUploadsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_origination_document_uploads_total",
				Help: "Total number of loan documents uploaded.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordStatusTransition(toStatus, outcome string) {
	Business.StatusTransitionsTotal.WithLabelValues(toStatus, outcome).Inc()
}

func RecordEMICalculation() {
	Business.EMICalculationsTotal.Inc()
}

func RecordVersionConflict() {
	Business.VersionConflictsTotal.Inc()
}

func RecordDocumentUpload() {
	Business.DocumentUploadsTotal.Inc()
}
