package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	CustomerID     *snowflake.ID
	SubscriptionID *snowflake.ID
	Status         InvoiceStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	// UpdateStatus applies a guarded transition: the row moves from one of
	// the expected statuses to target, and the number of rows changed is
	// returned so callers can detect a lost race.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected []InvoiceStatus, target InvoiceStatus, paidAt *time.Time, updatedAt time.Time) (int64, error)
}
