package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/recurrent/internal/clock"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	customerrepo "github.com/smallbiznis/recurrent/internal/customer/repository"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	dunningrepo "github.com/smallbiznis/recurrent/internal/dunning/repository"
	dunningservice "github.com/smallbiznis/recurrent/internal/dunning/service"
	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/recurrent/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/recurrent/internal/invoice/service"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	"github.com/smallbiznis/recurrent/internal/payment/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	paymentmethodrepo "github.com/smallbiznis/recurrent/internal/paymentmethod/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubAuthorizer struct {
	outcome domain.Outcome
}

func (a *stubAuthorizer) Charge(ctx context.Context, token string, amountCents int64) (domain.Outcome, error) {
	return a.outcome, nil
}

type noopNotifications struct{}

func (noopNotifications) Enqueue(ctx context.Context, req notificationdomain.EnqueueRequest) (notificationdomain.Notification, error) {
	return notificationdomain.Notification{}, nil
}

func (noopNotifications) DispatchPending(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

func setupPaymentTest(t *testing.T, authorizer *stubAuthorizer) (*gorm.DB, domain.Service, customerdomain.Customer, paymentmethoddomain.PaymentMethod, *snowflake.Node) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "payments.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&paymentmethoddomain.PaymentMethod{},
		&invoicedomain.Invoice{},
		&dunningdomain.DunningCase{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:              db,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           fake,
		Repo:            invoicerepo.Provide(),
		NotificationSvc: noopNotifications{},
	})

	dunningSvc := dunningservice.New(dunningservice.Params{
		DB:                db,
		Log:               zap.NewNop(),
		GenID:             node,
		Clock:             fake,
		Policy:            dunningdomain.DefaultPolicy(),
		Repo:              dunningrepo.Provide(),
		Authorizer:        authorizer,
		CustomerRepo:      customerrepo.Provide(),
		PaymentMethodRepo: paymentmethodrepo.Provide(),
		InvoiceSvc:        invoiceSvc,
		NotificationSvc:   noopNotifications{},
	})

	svc := New(Params{
		DB:                db,
		Log:               zap.NewNop(),
		Authorizer:        authorizer,
		CustomerRepo:      customerrepo.Provide(),
		PaymentMethodRepo: paymentmethodrepo.Provide(),
		DunningSvc:        dunningSvc,
	})

	customer := customerdomain.Customer{
		ID:    node.Generate(),
		Name:  "Pat",
		Email: "pat@example.com",
		Role:  "user",
	}
	require.NoError(t, db.Create(&customer).Error)

	method := paymentmethoddomain.PaymentMethod{
		ID:         node.Generate(),
		CustomerID: customer.ID,
		Last4:      "4242",
		Token:      "tok_test",
		CreatedAt:  fake.Now(),
	}
	require.NoError(t, db.Create(&method).Error)

	return db, svc, customer, method, node
}

func TestRecordCharge_Approved(t *testing.T) {
	_, svc, customer, method, _ := setupPaymentTest(t, &stubAuthorizer{
		outcome: domain.Outcome{Status: domain.OutcomeSuccess, TransactionID: "7777"},
	})

	resp, err := svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      customer.ID.String(),
		PaymentMethodID: method.ID.String(),
		AmountCents:     2500,
	})
	require.NoError(t, err)
	assert.True(t, resp.Outcome.Approved())
	assert.Equal(t, "7777", resp.Outcome.TransactionID)
	assert.Empty(t, resp.DunningCaseID)
}

func TestRecordCharge_DeclineOpensDunningCase(t *testing.T) {
	db, svc, customer, method, _ := setupPaymentTest(t, &stubAuthorizer{
		outcome: domain.Outcome{Status: domain.OutcomeFailed, ReasonCode: "insufficient_funds"},
	})

	resp, err := svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      customer.ID.String(),
		PaymentMethodID: method.ID.String(),
		AmountCents:     2500,
	})
	require.NoError(t, err)
	assert.False(t, resp.Outcome.Approved())
	assert.Equal(t, "insufficient_funds", resp.Outcome.ReasonCode)
	require.NotEmpty(t, resp.DunningCaseID)

	caseID, err := snowflake.ParseString(resp.DunningCaseID)
	require.NoError(t, err)
	var dunningCase dunningdomain.DunningCase
	require.NoError(t, db.First(&dunningCase, "id = ?", caseID).Error)
	assert.Equal(t, dunningdomain.CaseStatusRetrying, dunningCase.Status)
	assert.Nil(t, dunningCase.SubscriptionID)
	assert.Nil(t, dunningCase.InvoiceID)
	assert.Equal(t, int64(2500), dunningCase.AmountCents)
}

func TestRecordCharge_Validation(t *testing.T) {
	_, svc, customer, method, node := setupPaymentTest(t, &stubAuthorizer{
		outcome: domain.Outcome{Status: domain.OutcomeSuccess},
	})

	_, err := svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      customer.ID.String(),
		PaymentMethodID: method.ID.String(),
		AmountCents:     0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      "bogus",
		PaymentMethodID: method.ID.String(),
		AmountCents:     100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      node.Generate().String(),
		PaymentMethodID: method.ID.String(),
		AmountCents:     100,
	})
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)

	_, err = svc.RecordCharge(context.Background(), domain.RecordChargeRequest{
		CustomerID:      customer.ID.String(),
		PaymentMethodID: node.Generate().String(),
		AmountCents:     100,
	})
	assert.ErrorIs(t, err, paymentmethoddomain.ErrNotFound)
}
