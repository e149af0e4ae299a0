package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records booking transaction outcomes.
type BookingMetrics struct {
	duration  *prometheus.HistogramVec
	completed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	conflicts prometheus.Counter
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_transaction_duration_seconds",
		Help:    "Duration of booking transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transactions_completed",
		Help: "Booking transactions that committed.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transactions_rejected",
		Help: "Booking transactions rejected by eligibility checks.",
	}, []string{"operation", "reason"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_transaction_conflicts",
		Help: "Booking transactions retried or aborted on lock conflicts.",
	})
	reg.MustRegister(duration, completed, rejected, conflicts)
	return &BookingMetrics{
		duration:  duration,
		completed: completed,
		rejected:  rejected,
		conflicts: conflicts,
	}
}

// ObserveDuration records the duration for the named operation.
func (b *BookingMetrics) ObserveDuration(operation string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCompleted increments the completed counter for the named operation.
func (b *BookingMetrics) IncCompleted(operation string) {
	if b == nil || b.completed == nil {
		return
	}
	b.completed.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRejected increments the rejection counter for the operation and reason.
func (b *BookingMetrics) IncRejected(operation, reason string) {
	if b == nil || b.rejected == nil {
		return
	}
	b.rejected.WithLabelValues(normalizeLabel(operation), normalizeLabel(reason)).Inc()
}

// IncConflict increments the lock-conflict counter.
func (b *BookingMetrics) IncConflict() {
	if b == nil || b.conflicts == nil {
		return
	}
	b.conflicts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
