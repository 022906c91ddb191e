package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, dunningCase *DunningCase) error
	FindDue(ctx context.Context, db *gorm.DB, due time.Time, limit int) ([]*DunningCase, error)
	List(ctx context.Context, db *gorm.DB, status CaseStatus, limit int) ([]*DunningCase, error)
	Update(ctx context.Context, db *gorm.DB, dunningCase *DunningCase) error
}
