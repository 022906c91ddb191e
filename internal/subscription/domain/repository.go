package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListSubscriptionFilter struct {
	CustomerID *snowflake.ID
	Status     SubscriptionStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListSubscriptionFilter, page pagination.Pagination) ([]*Subscription, error)
	// CancelActive atomically moves an ACTIVE subscription to CANCELED and
	// stamps EndAt. It reports how many rows changed so a concurrent or
	// repeated cancel is detected as zero.
	CancelActive(ctx context.Context, db *gorm.DB, id snowflake.ID, endAt time.Time) (int64, error)
}
