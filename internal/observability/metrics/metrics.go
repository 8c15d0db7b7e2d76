package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics счётчики и гистограммы операций с расписанием
type BookingMetrics struct {
	transitionsTotal *prometheus.CounterVec
	generatedTotal   prometheus.Counter
	bulkLatency      prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "slots",
			Name:      "transitions_total",
			Help:      "Slot lifecycle transitions by event and outcome",
		}, []string{"event", "outcome"}),
		generatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "slots",
			Name:      "generated_total",
			Help:      "Slots created by bulk generation",
		}),
		bulkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "booking",
			Subsystem: "slots",
			Name:      "bulk_generation_seconds",
			Help:      "Latency of bulk slot generation requests",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.generatedTotal, m.bulkLatency)
	return m
}

func (m *BookingMetrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *BookingMetrics) AddGenerated(n int) {
	if m == nil {
		return
	}
	m.generatedTotal.Add(float64(n))
}

func (m *BookingMetrics) ObserveBulkLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bulkLatency.Observe(seconds)
}
