package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/recurrent/internal/clock"
	"github.com/smallbiznis/recurrent/internal/notification/domain"
	"github.com/smallbiznis/recurrent/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingProvider struct {
	sent    []string
	failFor map[string]error
}

func (p *recordingProvider) Send(ctx context.Context, to []string, subject, body string) error {
	if err, ok := p.failFor[to[0]]; ok {
		return err
	}
	p.sent = append(p.sent, to[0])
	return nil
}

func setupNotificationTest(t *testing.T) (*gorm.DB, domain.Service, *recordingProvider, *clock.FakeClock) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "notifications.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	provider := &recordingProvider{failFor: map[string]error{}}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Provider: provider,
	})
	return db, svc, provider, fake
}

func TestEnqueue_Validation(t *testing.T) {
	_, svc, _, _ := setupNotificationTest(t)

	_, err := svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "not-an-email",
		Kind:           domain.KindInvoiceNew,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)

	_, err = svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "pat@example.com",
		Kind:           "newsletter",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestDispatchPending_MarksSent(t *testing.T) {
	db, svc, provider, _ := setupNotificationTest(t)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := svc.Enqueue(context.Background(), domain.EnqueueRequest{
			RecipientEmail: email,
			Subject:        "Invoice #1",
			Body:           "New invoice",
			Kind:           domain.KindInvoiceNew,
		})
		require.NoError(t, err)
	}

	sent, err := svc.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, provider.sent)

	var remaining int64
	require.NoError(t, db.Model(&domain.Notification{}).Where("status = ?", domain.NotificationStatusPending).Count(&remaining).Error)
	assert.Zero(t, remaining)

	// Nothing left to deliver.
	sent, err = svc.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestDispatchPending_DeliveryFailureLeavesRowPending(t *testing.T) {
	db, svc, provider, _ := setupNotificationTest(t)
	provider.failFor["down@example.com"] = errors.New("smtp unavailable")

	_, err := svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "down@example.com",
		Subject:        "Payment Failed",
		Body:           "Payment of $50.00 failed.",
		Kind:           domain.KindPaymentFailed,
	})
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "up@example.com",
		Subject:        "Payment Failed",
		Body:           "Payment of $50.00 failed.",
		Kind:           domain.KindPaymentFailed,
	})
	require.NoError(t, err)

	sent, err := svc.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	var pending []domain.Notification
	require.NoError(t, db.Where("status = ?", domain.NotificationStatusPending).Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "down@example.com", pending[0].RecipientEmail)

	// Retried on the next run once the transport recovers.
	delete(provider.failFor, "down@example.com")
	sent, err = svc.DispatchPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestFormatAmountCents(t *testing.T) {
	assert.Equal(t, "$50.00", domain.FormatAmountCents(5000))
	assert.Equal(t, "$33.33", domain.FormatAmountCents(3333))
	assert.Equal(t, "$0.05", domain.FormatAmountCents(5))
	assert.Equal(t, "-$12.34", domain.FormatAmountCents(-1234))
}
