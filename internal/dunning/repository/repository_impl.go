package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/recurrent/internal/dunning/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, dunningCase *domain.DunningCase) error {
	return db.WithContext(ctx).Create(dunningCase).Error
}

func (r *repo) FindDue(ctx context.Context, db *gorm.DB, due time.Time, limit int) ([]*domain.DunningCase, error) {
	var cases []*domain.DunningCase
	err := db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", domain.CaseStatusRetrying, due).
		Order("next_retry_at, id").
		Limit(limit).
		Find(&cases).Error
	return cases, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status domain.CaseStatus, limit int) ([]*domain.DunningCase, error) {
	var cases []*domain.DunningCase
	stmt := db.WithContext(ctx).Model(&domain.DunningCase{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	err := stmt.Order("created_at DESC, id DESC").Limit(limit).Find(&cases).Error
	return cases, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, dunningCase *domain.DunningCase) error {
	return db.WithContext(ctx).Save(dunningCase).Error
}
