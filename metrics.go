package dsst

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	derivativeEvals = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dsst",
		Name:      "derivative_evaluations_total",
		Help:      "Number of mean element derivative evaluations.",
	})
	reinitCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dsst",
		Name:      "reinitializations_total",
		Help:      "Number of force model reinitializations.",
	})
	mappingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dsst",
		Name:      "mapping_failures_total",
		Help:      "Number of failed state mappings, by error kind.",
	}, []string{"kind"})
	conversionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dsst",
		Name:      "osculating_to_mean_seconds",
		Help:      "Duration of the osculating to mean element conversions.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(derivativeEvals, reinitCount, mappingFailures, conversionDuration)
}

func countFailure(err error) {
	if err == nil {
		return
	}
	mappingFailures.WithLabelValues(errKind(err).String()).Inc()
}
