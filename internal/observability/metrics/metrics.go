// Package metrics exposes prometheus instruments for the billing core.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics captures charge, dunning and notification health signals.
type BillingMetrics struct {
	chargeAttempts     *prometheus.CounterVec
	dunningTransitions *prometheus.CounterVec
	notificationsSent  *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
	jobErrors          *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the singleton billing metrics registry.
func Billing() *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer)
	})
	return billingMetrics
}

func newBillingMetrics(registerer prometheus.Registerer) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	chargeAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recurrent_charge_attempts_total",
		Help: "Payment authorization attempts by outcome.",
	}, []string{"outcome"})
	dunningTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recurrent_dunning_transitions_total",
		Help: "Dunning case state transitions.",
	}, []string{"state"})
	notificationsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recurrent_notifications_sent_total",
		Help: "Notifications dispatched by kind.",
	}, []string{"kind"})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recurrent_scheduler_job_runs_total",
		Help: "Scheduler job runs by name.",
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recurrent_scheduler_job_errors_total",
		Help: "Scheduler job failures by name.",
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recurrent_scheduler_job_duration_seconds",
		Help:    "Scheduler job latency.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"job"})

	registerer.MustRegister(
		chargeAttempts,
		dunningTransitions,
		notificationsSent,
		jobRuns,
		jobErrors,
		jobDuration,
	)

	return &BillingMetrics{
		chargeAttempts:     chargeAttempts,
		dunningTransitions: dunningTransitions,
		notificationsSent:  notificationsSent,
		jobRuns:            jobRuns,
		jobErrors:          jobErrors,
		jobDuration:        jobDuration,
	}
}

func (m *BillingMetrics) IncChargeAttempt(outcome string) {
	if m == nil {
		return
	}
	m.chargeAttempts.WithLabelValues(outcome).Inc()
}

func (m *BillingMetrics) IncDunningTransition(state string) {
	if m == nil {
		return
	}
	m.dunningTransitions.WithLabelValues(state).Inc()
}

func (m *BillingMetrics) IncNotificationSent(kind string) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(kind).Inc()
}

func (m *BillingMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *BillingMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *BillingMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
