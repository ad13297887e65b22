package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ToggleMarked   = "marked"
	ToggleUnmarked = "unmarked"

	ReminderPublished = "published"
	ReminderFailed    = "failed"
)

var (
	paymentTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "isp_billing_payment_toggles_total",
		Help: "Payment toggles applied, by resulting state.",
	}, []string{"result"})

	toggleConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "isp_billing_toggle_conflicts_total",
		Help: "Toggles rejected because another toggle for the same customer and period was in progress.",
	})

	duplicatePaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "isp_billing_duplicate_payments_total",
		Help: "Extra payments seen for a customer and period during reconciliation.",
	})

	customerMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "isp_billing_customer_mutations_total",
		Help: "Customer registrations, edits and deletions.",
	}, []string{"operation"})

	remindersPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "isp_billing_reminders_total",
		Help: "Payment reminders handled by the reminder job, by outcome.",
	}, []string{"outcome"})
)

func RecordToggle(result string) {
	paymentTogglesTotal.WithLabelValues(result).Inc()
}

func RecordToggleConflict() {
	toggleConflictsTotal.Inc()
}

func RecordDuplicatePayments(n int) {
	if n <= 0 {
		return
	}
	duplicatePaymentsTotal.Add(float64(n))
}

func RecordCustomerMutation(operation string) {
	customerMutationsTotal.WithLabelValues(operation).Inc()
}

func RecordReminder(outcome string) {
	remindersPublishedTotal.WithLabelValues(outcome).Inc()
}
