package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Fully-qualified counter names, as reported by a Gatherer.
const (
	RequestsTotalName = "snabb_client_requests_total"
	StepsTotalName    = "snabb_assistant_steps_total"
)

// BookingMetrics exposes counters/histograms for Snabb calls and flow steps.
type BookingMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	stepsTotal     *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snabb",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total Snabb API calls",
		}, []string{"operation", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "snabb",
			Subsystem: "client",
			Name:      "request_latency_seconds",
			Help:      "Latency of Snabb API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snabb",
			Subsystem: "assistant",
			Name:      "steps_total",
			Help:      "Booking flow steps by outcome",
		}, []string{"step", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.stepsTotal)
	return m
}

// ObserveRequest records one Snabb API call. status is the HTTP status code
// as text, or "error" when no response was received.
func (m *BookingMetrics) ObserveRequest(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *BookingMetrics) ObserveStep(step, outcome string) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(step, outcome).Inc()
}

// CounterSample is one labelled counter series read back from a registry.
type CounterSample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Counters gathers the named counter families from g. Series come back in
// the Gatherer's order, which sorts by name and then by label values.
func Counters(g prometheus.Gatherer, names ...string) ([]CounterSample, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var samples []CounterSample
	for _, fam := range families {
		if !wanted[fam.GetName()] {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			samples = append(samples, CounterSample{
				Name:   fam.GetName(),
				Labels: labels,
				Value:  metric.GetCounter().GetValue(),
			})
		}
	}
	return samples, nil
}
