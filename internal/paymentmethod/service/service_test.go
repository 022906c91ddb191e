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
	"github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	"github.com/smallbiznis/recurrent/internal/paymentmethod/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPaymentMethodTest(t *testing.T) (*gorm.DB, domain.Service, customerdomain.Customer, *snowflake.Node) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "methods.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}, &domain.PaymentMethod{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:         repository.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})

	customer := customerdomain.Customer{
		ID:    node.Generate(),
		Name:  "Pat",
		Email: "pat@example.com",
		Role:  "user",
	}
	require.NoError(t, db.Create(&customer).Error)

	return db, svc, customer, node
}

func TestCreatePaymentMethod(t *testing.T) {
	_, svc, customer, _ := setupPaymentMethodTest(t)

	method, err := svc.Create(context.Background(), domain.CreatePaymentMethodRequest{
		CustomerID: customer.ID.String(),
		CardNumber: "4242424242424242",
	})
	require.NoError(t, err)

	assert.Equal(t, "4242", method.Last4)
	assert.NotEmpty(t, method.Token)
	assert.NotContains(t, method.Token, "4242424242424242")
	assert.Equal(t, customer.ID, method.CustomerID)
}

func TestCreatePaymentMethod_Validation(t *testing.T) {
	_, svc, customer, node := setupPaymentMethodTest(t)

	_, err := svc.Create(context.Background(), domain.CreatePaymentMethodRequest{
		CustomerID: "bogus",
		CardNumber: "4242424242424242",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Create(context.Background(), domain.CreatePaymentMethodRequest{
		CustomerID: customer.ID.String(),
		CardNumber: "42",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCardNumber)

	_, err = svc.Create(context.Background(), domain.CreatePaymentMethodRequest{
		CustomerID: node.Generate().String(),
		CardNumber: "4242424242424242",
	})
	assert.ErrorIs(t, err, customerdomain.ErrNotFound)
}

func TestGetPaymentMethodByID(t *testing.T) {
	_, svc, customer, node := setupPaymentMethodTest(t)

	created, err := svc.Create(context.Background(), domain.CreatePaymentMethodRequest{
		CustomerID: customer.ID.String(),
		CardNumber: "4242424242424242",
	})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Last4, got.Last4)

	_, err = svc.GetByID(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
