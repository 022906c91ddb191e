package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBillingMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newBillingMetrics(registry)

	m.IncChargeAttempt("success")
	m.IncChargeAttempt("success")
	m.IncChargeAttempt("failed")
	m.IncDunningTransition("RETRYING")
	m.IncNotificationSent("invoice_new")
	m.IncJobRun("dunning_retries")
	m.IncJobError("dunning_retries")
	m.ObserveJobDuration("dunning_retries", 50*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chargeAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chargeAttempts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dunningTransitions.WithLabelValues("RETRYING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsSent.WithLabelValues("invoice_new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("dunning_retries")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobErrors.WithLabelValues("dunning_retries")))
}

func TestBillingMetrics_NilSafe(t *testing.T) {
	var m *BillingMetrics

	assert.NotPanics(t, func() {
		m.IncChargeAttempt("success")
		m.IncDunningTransition("RESOLVED")
		m.IncNotificationSent("payment_failed")
		m.IncJobRun("notification_dispatch")
		m.IncJobError("notification_dispatch")
		m.ObserveJobDuration("notification_dispatch", time.Second)
	})
}

func TestBilling_Singleton(t *testing.T) {
	assert.Same(t, Billing(), Billing())
}
