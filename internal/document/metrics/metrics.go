package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document parsing and cross-validation.
// All methods are safe on a nil receiver.
type Metrics struct {
	// Parse outcomes by document kind, MRZ format (or "-") and result.
	ParseOutcome *prometheus.CounterVec

	ParseConfidence *prometheus.HistogramVec

	// Cross-validation aggregate score by source kind.
	CrossValidationScore *prometheus.HistogramVec

	// Verification decisions by source kind and validity.
	VerificationOutcome *prometheus.CounterVec

	// Per-field classifications; labels carry field names, never values.
	FieldClassification *prometheus.CounterVec

	VerifyLatency prometheus.Histogram

	BatchSize prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	scoreBuckets := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1}
	return &Metrics{
		ParseOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_parse_outcomes_total",
			Help: "Document parse outcomes by kind, format and result",
		}, []string{"kind", "format", "result"}),

		ParseConfidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_parse_confidence",
			Help:    "Confidence of successful document parses",
			Buckets: scoreBuckets,
		}, []string{"kind"}),

		CrossValidationScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_cross_validation_score",
			Help:    "Aggregate cross-validation score by source kind",
			Buckets: scoreBuckets,
		}, []string{"source"}),

		VerificationOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_verification_outcomes_total",
			Help: "Verification decisions by source kind and validity",
		}, []string{"source", "valid"}),

		FieldClassification: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_field_classifications_total",
			Help: "Per-field cross-validation classifications",
		}, []string{"field", "classification"}),

		VerifyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_verify_duration_seconds",
			Help:    "Duration of a full verification including persistence",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_verify_batch_size",
			Help:    "Number of documents per batch verification request",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
	}
}

// IncrementParse records a parse outcome.
func (m *Metrics) IncrementParse(kind, format, result string) {
	if m != nil {
		m.ParseOutcome.WithLabelValues(kind, format, result).Inc()
	}
}

// ObserveParseConfidence records the confidence of a successful parse.
func (m *Metrics) ObserveParseConfidence(kind string, confidence float64) {
	if m != nil {
		m.ParseConfidence.WithLabelValues(kind).Observe(confidence)
	}
}

// ObserveScore records a cross-validation score and its decision.
func (m *Metrics) ObserveScore(source string, score float64, valid bool) {
	if m == nil {
		return
	}
	m.CrossValidationScore.WithLabelValues(source).Observe(score)
	label := "false"
	if valid {
		label = "true"
	}
	m.VerificationOutcome.WithLabelValues(source, label).Inc()
}

// IncrementFieldClassification records one field comparison outcome.
func (m *Metrics) IncrementFieldClassification(field, classification string) {
	if m != nil {
		m.FieldClassification.WithLabelValues(field, classification).Inc()
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the size of a batch request.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
