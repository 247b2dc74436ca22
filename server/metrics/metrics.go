// Package metrics exposes prometheus counters for the alert pipeline
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scamguard",
		Name:      "alerts_classified_total",
		Help:      "Messages classified, by verdict.",
	}, []string{"verdict"})

	SmsAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scamguard",
		Name:      "sms_attempts_total",
		Help:      "SMS send attempts, by outcome.",
	}, []string{"result"})

	DroppedPhoneNumbers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scamguard",
		Name:      "dropped_phone_numbers_total",
		Help:      "Recipient phone numbers skipped because they could not be normalized.",
	})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scamguard",
		Name:      "dispatch_duration_seconds",
		Help:      "Time taken to fan out one warning to every recipient.",
		Buckets:   prometheus.DefBuckets,
	})
)

// ObserveVerdict counts a classification; nil means the classifier gave up
func ObserveVerdict(isScam *bool) {
	verdict := "unknown"
	if isScam != nil {
		verdict = "safe"
		if *isScam {
			verdict = "scam"
		}
	}
	AlertsClassified.WithLabelValues(verdict).Inc()
}

func ObserveSend(ok bool) {
	result := "failed"
	if ok {
		result = "delivered"
	}
	SmsAttempts.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
