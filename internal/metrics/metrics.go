// Package metrics records conversion metrics in a Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatmd"

// Result labels a conversion outcome.
type Result string

const (
	ResultSuccess  Result = "success"
	ResultRejected Result = "rejected" // request or options were invalid
	ResultFailed   Result = "failed"   // the parser failed
)

// Recorder holds the conversion metrics. A nil *Recorder records nothing.
type Recorder struct {
	conversions *prom.CounterVec
	duration    *prom.HistogramVec
	outputBytes *prom.HistogramVec
	definitions prom.Counter
}

// NewRecorder constructs the conversion metrics and registers them, together
// with the Go and process collectors, on reg. A nil reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		conversions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by dialect and outcome",
		}, []string{"dialect", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of successful conversions",
			Buckets:   prom.DefBuckets,
		}, []string{"dialect"}),
		outputBytes: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "output_bytes",
			Help:      "Size of converted text",
			Buckets:   prom.ExponentialBuckets(64, 4, 8),
		}, []string{"dialect"}),
		definitions: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "definitions_total",
			Help:      "Link reference definitions collected",
		}),
	}
	reg.MustRegister(r.conversions, r.duration, r.outputBytes, r.definitions)
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return r
}

// ObserveConversion records a successful conversion.
func (r *Recorder) ObserveConversion(dialect string, d time.Duration, outputLen, definitions int) {
	if r == nil {
		return
	}
	r.conversions.WithLabelValues(dialect, string(ResultSuccess)).Inc()
	r.duration.WithLabelValues(dialect).Observe(d.Seconds())
	r.outputBytes.WithLabelValues(dialect).Observe(float64(outputLen))
	r.definitions.Add(float64(definitions))
}

// IncFailure records a conversion that did not produce output.
func (r *Recorder) IncFailure(dialect string, result Result) {
	if r == nil {
		return
	}
	r.conversions.WithLabelValues(dialect, string(result)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics in reg.
// Responses are left uncompressed; the server's gzip middleware handles that.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics:  true,
		DisableCompression: true,
	})
}
