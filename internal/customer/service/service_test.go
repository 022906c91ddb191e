package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/recurrent/internal/clock"
	"github.com/smallbiznis/recurrent/internal/customer/domain"
	"github.com/smallbiznis/recurrent/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCustomerTest(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "customers.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return db, svc
}

func TestCreateCustomer(t *testing.T) {
	_, svc := setupCustomerTest(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Pat",
		Email: "pat@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, customer.Role)
	assert.NotZero(t, customer.ID)

	admin, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Sam",
		Email: "sam@example.com",
		Role:  "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestCreateCustomer_Validation(t *testing.T) {
	_, svc := setupCustomerTest(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Pat", Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Pat", Email: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Pat", Email: "pat@example.com", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	_, svc := setupCustomerTest(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Pat", Email: "pat@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Other Pat", Email: "pat@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestGetCustomerByID(t *testing.T) {
	_, svc := setupCustomerTest(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Pat", Email: "pat@example.com"})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)

	_, err = svc.GetByID(context.Background(), domain.GetCustomerRequest{ID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	node, _ := snowflake.NewNode(2)
	_, err = svc.GetByID(context.Background(), domain.GetCustomerRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomers_CursorPagination(t *testing.T) {
	_, svc := setupCustomerTest(t)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
			Name:  fmt.Sprintf("Customer %d", i),
			Email: fmt.Sprintf("customer%d@example.com", i),
		})
		require.NoError(t, err)
	}

	first, err := svc.List(context.Background(), domain.ListCustomerRequest{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, first.Customers, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(context.Background(), domain.ListCustomerRequest{
		PageSize:  3,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Customers, 2)
	assert.False(t, second.HasMore)

	seen := map[string]bool{}
	for _, c := range append(first.Customers, second.Customers...) {
		seen[c.Email] = true
	}
	assert.Len(t, seen, 5)
}
